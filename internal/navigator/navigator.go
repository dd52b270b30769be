// Package navigator holds the reading state of one document: the active
// sentence, the per-word simplification overrides and the view rendered from
// them.
//
// A Navigator is not safe for concurrent use. The presentation layer owns it
// and serialises every call, including those driven by voice input.
package navigator

import (
	"context"
	"slices"

	"github.com/metcalfc/lumina/internal/bionic"
	"github.com/metcalfc/lumina/internal/observe"
	"github.com/metcalfc/lumina/internal/reader"
	"github.com/metcalfc/lumina/internal/synonym"
)

// Options configures a Navigator.
type Options struct {
	// RestrictEditingToActiveSentence limits SimplifyWord to the active
	// sentence. When false any sentence may be edited.
	RestrictEditingToActiveSentence bool

	// Mode selects the bionic split rule. The zero value is bionic.ModeWhole.
	Mode bionic.Mode

	// Synonyms is the replacement table. Nil means synonym.Default().
	Synonyms *synonym.Table

	// Metrics, if set, receives move and simplification counts.
	Metrics *observe.Metrics

	// OnActiveChange is called with the new index every time the active
	// sentence changes, and after Load when the document is not empty.
	OnActiveChange func(index int)
}

type slot struct {
	sentence, word int
}

// Navigator tracks the active sentence and simplification overrides for the
// loaded text.
type Navigator struct {
	opts     Options
	synonyms *synonym.Table

	sentences []string
	words     [][]bionic.Word
	overrides map[slot]bionic.Word
	toc       []reader.TOCEntry

	active     int
	simplified int
}

// New creates an empty Navigator.
func New(opts Options) *Navigator {
	syn := opts.Synonyms
	if syn == nil {
		syn = synonym.Default()
	}
	return &Navigator{
		opts:      opts,
		synonyms:  syn,
		overrides: map[slot]bionic.Word{},
	}
}

// Load replaces the text. Sentences, encodings, overrides, the TOC, the
// active index and the simplification count are all reset.
func (n *Navigator) Load(text string) {
	n.LoadSentences(bionic.SplitSentences(text))
}

// LoadDocument loads pre-split sentences and their table of contents.
func (n *Navigator) LoadDocument(doc *reader.Document) {
	n.load(doc.Sentences, doc.TOC)
}

// LoadSentences replaces the text with sentences that are already split.
func (n *Navigator) LoadSentences(sentences []string) {
	n.load(sentences, nil)
}

func (n *Navigator) load(sentences []string, toc []reader.TOCEntry) {
	words := make([][]bionic.Word, len(sentences))
	for i, s := range sentences {
		words[i] = n.opts.Mode.EncodeSentence(s)
	}

	n.sentences = slices.Clone(sentences)
	n.words = words
	n.overrides = map[slot]bionic.Word{}
	n.active = 0
	n.simplified = 0
	n.SetTOC(toc)

	if len(sentences) > 0 {
		n.notify()
	}
}

// Len returns the number of sentences.
func (n *Navigator) Len() int {
	return len(n.sentences)
}

// ActiveIndex returns the index of the active sentence. It is 0 for an
// empty document.
func (n *Navigator) ActiveIndex() int {
	return n.active
}

// ActiveSentence returns the text of the active sentence.
func (n *Navigator) ActiveSentence() (string, bool) {
	if len(n.sentences) == 0 {
		return "", false
	}
	return n.sentences[n.active], true
}

// Sentence returns the text of sentence i.
func (n *Navigator) Sentence(i int) (string, bool) {
	if i < 0 || i >= len(n.sentences) {
		return "", false
	}
	return n.sentences[i], true
}

// SimplifiedCount returns how many words have been simplified since Load.
func (n *Navigator) SimplifiedCount() int {
	return n.simplified
}

// Progress returns the 1-based active position and the sentence count.
func (n *Navigator) Progress() (current, total int) {
	if len(n.sentences) == 0 {
		return 0, 0
	}
	return n.active + 1, len(n.sentences)
}

// AtEnd reports whether the last sentence is active.
func (n *Navigator) AtEnd() bool {
	return n.active >= len(n.sentences)-1
}

// GoNext moves to the next sentence. It reports false at the last sentence.
func (n *Navigator) GoNext() bool {
	if n.active >= len(n.sentences)-1 {
		return false
	}
	n.active++
	n.opts.Metrics.RecordMove(context.Background(), observe.MoveNext)
	n.notify()
	return true
}

// GoPrevious moves to the previous sentence. It reports false at the first
// sentence.
func (n *Navigator) GoPrevious() bool {
	if n.active <= 0 {
		return false
	}
	n.active--
	n.opts.Metrics.RecordMove(context.Background(), observe.MovePrevious)
	n.notify()
	return true
}

// FocusSentence makes sentence i active. Out-of-range indices are ignored.
// Focusing the already active sentence reports true without a notification.
func (n *Navigator) FocusSentence(i int) bool {
	if i < 0 || i >= len(n.sentences) {
		return false
	}
	if i == n.active {
		return true
	}
	n.active = i
	n.opts.Metrics.RecordMove(context.Background(), observe.MoveFocus)
	n.notify()
	return true
}

func (n *Navigator) notify() {
	if n.opts.OnActiveChange != nil {
		n.opts.OnActiveChange(n.active)
	}
}

// CanEdit reports whether the editing policy allows simplifying words of
// sentence s.
func (n *Navigator) CanEdit(s int) bool {
	if s < 0 || s >= len(n.sentences) {
		return false
	}
	return !n.opts.RestrictEditingToActiveSentence || s == n.active
}

// SimplifyWord replaces word w of sentence s with its synonym. original must
// equal the slot's original word; a stale request is ignored. The call is a
// no-op when the policy forbids editing s, the slot does not exist, it is
// already simplified or no synonym is known. It returns the new word and
// whether a replacement happened.
func (n *Navigator) SimplifyWord(s, w int, original string) (bionic.Word, bool) {
	if !n.CanEdit(s) || w < 0 || w >= len(n.words[s]) {
		return bionic.Word{}, false
	}
	key := slot{s, w}
	if _, done := n.overrides[key]; done {
		return bionic.Word{}, false
	}
	orig := n.words[s][w].Original
	if original != orig {
		return bionic.Word{}, false
	}
	replacement, ok := n.synonyms.Lookup(orig)
	if !ok {
		return bionic.Word{}, false
	}

	word := n.opts.Mode.Encode(replacement)
	n.overrides[key] = word
	n.simplified++
	n.opts.Metrics.RecordSimplification(context.Background())
	return word, true
}

// Word returns the word shown at slot (s, w): the override when there is one,
// otherwise the original encoding.
func (n *Navigator) Word(s, w int) (bionic.Word, bool) {
	if s < 0 || s >= len(n.words) || w < 0 || w >= len(n.words[s]) {
		return bionic.Word{}, false
	}
	if o, ok := n.overrides[slot{s, w}]; ok {
		return o, true
	}
	return n.words[s][w], true
}
