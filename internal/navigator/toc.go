package navigator

import "github.com/metcalfc/lumina/internal/reader"

// SetTOC replaces the table of contents. Entries pointing outside the loaded
// sentences are dropped.
func (n *Navigator) SetTOC(toc []reader.TOCEntry) {
	n.toc = n.toc[:0:0]
	for _, e := range toc {
		if e.SentenceIndex >= 0 && e.SentenceIndex < len(n.sentences) {
			n.toc = append(n.toc, e)
		}
	}
}

// TOC returns the table of contents.
func (n *Navigator) TOC() []reader.TOCEntry {
	return n.toc
}

// CurrentHeading returns the index in TOC of the last heading at or before
// the active sentence, or -1 when the active sentence precedes every heading.
func (n *Navigator) CurrentHeading() int {
	for i := len(n.toc) - 1; i >= 0; i-- {
		if n.active >= n.toc[i].SentenceIndex {
			return i
		}
	}
	return -1
}

// CurrentHeadingTitle returns the title of the current heading.
func (n *Navigator) CurrentHeadingTitle() string {
	if i := n.CurrentHeading(); i >= 0 {
		return n.toc[i].Title
	}
	return ""
}

// JumpToHeading focuses the first sentence of TOC entry i.
func (n *Navigator) JumpToHeading(i int) bool {
	if i < 0 || i >= len(n.toc) {
		return false
	}
	return n.FocusSentence(n.toc[i].SentenceIndex)
}
