package navigator

import "github.com/metcalfc/lumina/internal/bionic"

// View is a read-only snapshot of the document for presentation.
type View struct {
	Active    int
	Sentences []SentenceView
}

// SentenceView is one sentence of a View.
type SentenceView struct {
	Index  int
	Text   string
	Active bool
	Words  []WordView
}

// WordView is one word slot of a sentence.
type WordView struct {
	bionic.Word

	// Simplified is set when the slot shows a synonym override.
	Simplified bool

	// Simplifiable is set, on the active sentence only, when the slot has a
	// synonym and is not simplified yet.
	Simplifiable bool

	// Synonym is the replacement SimplifyWord would apply, when Simplifiable.
	Synonym string
}

// Render builds the current view. Each slot shows its override if there is
// one, otherwise the original encoding.
func (n *Navigator) Render() View {
	v := View{
		Active:    n.active,
		Sentences: make([]SentenceView, len(n.sentences)),
	}
	for i := range n.sentences {
		v.Sentences[i] = n.renderSentence(i)
	}
	return v
}

// RenderSentence builds the view of sentence i alone.
func (n *Navigator) RenderSentence(i int) (SentenceView, bool) {
	if i < 0 || i >= len(n.sentences) {
		return SentenceView{}, false
	}
	return n.renderSentence(i), true
}

func (n *Navigator) renderSentence(i int) SentenceView {
	active := i == n.active
	sv := SentenceView{
		Index:  i,
		Text:   n.sentences[i],
		Active: active,
		Words:  make([]WordView, len(n.words[i])),
	}
	for j, w := range n.words[i] {
		wv := WordView{Word: w}
		if o, ok := n.overrides[slot{i, j}]; ok {
			wv.Word = o
			wv.Simplified = true
		} else if active {
			wv.Synonym, wv.Simplifiable = n.synonyms.Lookup(w.Original)
		}
		sv.Words[j] = wv
	}
	return sv
}
