// Package bionic provides the bold-first-half ("bionic reading") word encoding
// and the sentence and word segmentation it is applied to.
package bionic

import (
	"strings"
)

// Word is a token split into the part rendered bold and the part rendered
// regular. Bold + Regular always equals Original.
type Word struct {
	Original string
	Bold     string
	Regular  string
}

// Mode selects how the bold split point of a token is computed.
type Mode int

const (
	// ModeWhole computes the split on the whole token, punctuation included.
	ModeWhole Mode = iota
	// ModeLetters computes the split on the leading run of ASCII letters only.
	// Tokens that do not start with a letter fall back to ModeWhole.
	ModeLetters
)

// String returns the config name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLetters:
		return "letters"
	default:
		return "whole"
	}
}

// ParseMode maps a config name to a Mode. Unknown names report false.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "whole":
		return ModeWhole, true
	case "letters":
		return ModeLetters, true
	}
	return ModeWhole, false
}

// SplitPoint returns how many leading runes of a token of the given rune
// length are rendered bold.
func SplitPoint(length int) int {
	if length <= 0 {
		return 0
	}
	if length <= 3 {
		return 1
	}
	return (length + 1) / 2
}

// Encode splits token with the ModeWhole rule.
func Encode(token string) Word {
	return ModeWhole.Encode(token)
}

// Encode splits a single token into its bold and regular parts.
func (m Mode) Encode(token string) Word {
	runes := []rune(token)
	mid := SplitPoint(len(runes))
	if m == ModeLetters {
		if n := leadingLetters(runes); n > 0 {
			mid = SplitPoint(n)
		}
	}
	return Word{
		Original: token,
		Bold:     string(runes[:mid]),
		Regular:  string(runes[mid:]),
	}
}

func leadingLetters(runes []rune) int {
	n := 0
	for _, r := range runes {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			break
		}
		n++
	}
	return n
}

// Segment splits text into whitespace-delimited tokens.
func Segment(text string) []string {
	return strings.Fields(text)
}

// EncodeSentence segments a sentence and encodes every token with the
// ModeWhole rule.
func EncodeSentence(sentence string) []Word {
	return ModeWhole.EncodeSentence(sentence)
}

// EncodeSentence segments a sentence and encodes every token.
func (m Mode) EncodeSentence(sentence string) []Word {
	tokens := Segment(sentence)
	words := make([]Word, 0, len(tokens))
	for _, tok := range tokens {
		words = append(words, m.Encode(tok))
	}
	return words
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

// SplitSentences splits text into trimmed sentences. A sentence ends at a
// run of '.', '!' or '?', which stays attached to it. Text after the last
// terminator becomes the final sentence. Abbreviations such as "Mr." end a
// sentence like any other period.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); {
		if !isTerminator(text[i]) {
			i++
			continue
		}
		for i < len(text) && isTerminator(text[i]) {
			i++
		}
		if s := strings.TrimSpace(text[start:i]); s != "" {
			sentences = append(sentences, s)
		}
		start = i
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
