package speech

import (
	"strings"

	"github.com/metcalfc/lumina/internal/synonym"
)

// Tone is a pitch and rate pair applied to one utterance. Both are factors
// relative to the synthesizer's normal voice.
type Tone struct {
	Name  string
	Pitch float64
	Rate  float64
}

var (
	ToneNeutral  = Tone{Name: "neutral", Pitch: 1.4, Rate: 0.7}
	ToneExcited  = Tone{Name: "excited", Pitch: 1.6, Rate: 0.8}
	ToneQuestion = Tone{Name: "question", Pitch: 1.5, Rate: 0.7}
	ToneSad      = Tone{Name: "sad", Pitch: 1.2, Rate: 0.65}
)

var (
	excitedWords = map[string]bool{"wow": true, "amazing": true, "awesome": true, "fun": true, "excited": true}
	sadWords     = map[string]bool{"crying": true, "hungry": true, "sad": true}
)

// ToneFor picks the tone a sentence is read with. Exclamations and excited
// words win over questions, which win over sad words.
func ToneFor(text string) Tone {
	var excited, sad bool
	for _, tok := range strings.Fields(text) {
		w := synonym.Normalize(tok)
		excited = excited || excitedWords[w]
		sad = sad || sadWords[w]
	}
	switch {
	case excited || strings.Contains(text, "!"):
		return ToneExcited
	case strings.Contains(text, "?"):
		return ToneQuestion
	case sad:
		return ToneSad
	}
	return ToneNeutral
}
