// Package speech reads text aloud one sentence at a time.
package speech

import "github.com/metcalfc/lumina/internal/bionic"

// Utterance is one sentence queued for the synthesizer.
type Utterance struct {
	Index int
	Text  string
	Tone  Tone
}

// State is the sequencer state.
type State int

const (
	StateIdle State = iota
	StateSpeaking
)

func (s State) String() string {
	if s == StateSpeaking {
		return "speaking"
	}
	return "idle"
}

// Sequencer is an ordered queue of utterances drained one at a time. The
// caller speaks the utterance it is handed and calls Done when the
// synthesizer reports completion.
//
// A Sequencer is not safe for concurrent use.
type Sequencer struct {
	queue   []Utterance
	current Utterance
	state   State
}

// Say replaces anything queued or speaking with the sentences of text and
// returns the first one to speak. It reports false when text has no
// sentences, leaving the sequencer idle.
func (s *Sequencer) Say(text string) (Utterance, bool) {
	s.Cancel()
	for i, sentence := range bionic.SplitSentences(text) {
		s.queue = append(s.queue, Utterance{Index: i, Text: sentence, Tone: ToneFor(sentence)})
	}
	return s.next()
}

// Done marks the current utterance finished and returns the next one. It
// reports false, and goes idle, when the queue is empty.
func (s *Sequencer) Done() (Utterance, bool) {
	if s.state != StateSpeaking {
		return Utterance{}, false
	}
	return s.next()
}

// Cancel drops the queue and goes idle.
func (s *Sequencer) Cancel() {
	s.queue = nil
	s.current = Utterance{}
	s.state = StateIdle
}

// State returns the sequencer state.
func (s *Sequencer) State() State {
	return s.state
}

// Current returns the utterance being spoken.
func (s *Sequencer) Current() (Utterance, bool) {
	return s.current, s.state == StateSpeaking
}

// Pending returns how many utterances wait behind the current one.
func (s *Sequencer) Pending() int {
	return len(s.queue)
}

func (s *Sequencer) next() (Utterance, bool) {
	if len(s.queue) == 0 {
		s.Cancel()
		return Utterance{}, false
	}
	s.current = s.queue[0]
	s.queue = s.queue[1:]
	s.state = StateSpeaking
	return s.current, true
}
