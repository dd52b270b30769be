package voice

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

const (
	defaultKeywordCount  = 3
	defaultMinKeywordLen = 3
	defaultPhoneticScore = 0.85
)

// Normalize lowercases s, drops every character that is neither a word
// character nor whitespace, collapses whitespace runs and trims.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Matcher decides whether a transcript chunk completes a sentence.
// The zero value uses the last 3 words of the sentence, ignores keywords
// shorter than 3 characters and matches by substring only.
type Matcher struct {
	// KeywordCount is how many trailing words of the sentence are keywords.
	KeywordCount int

	// MinKeywordLen drops keywords with fewer characters.
	MinKeywordLen int

	// Phonetic also accepts a keyword when a spoken word sounds like it
	// (Double Metaphone) and is spelled close enough (Jaro-Winkler).
	Phonetic bool

	// PhoneticScore is the minimum Jaro-Winkler score for a phonetic match.
	PhoneticScore float64
}

// Keywords returns the trailing keywords of sentence, normalized.
func (m Matcher) Keywords(sentence string) []string {
	count, minLen := m.KeywordCount, m.MinKeywordLen
	if count <= 0 {
		count = defaultKeywordCount
	}
	if minLen <= 0 {
		minLen = defaultMinKeywordLen
	}

	tokens := strings.Fields(Normalize(sentence))
	if len(tokens) > count {
		tokens = tokens[len(tokens)-count:]
	}
	keywords := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len([]rune(t)) >= minLen {
			keywords = append(keywords, t)
		}
	}
	return keywords
}

// Match reports whether chunk contains any keyword of sentence.
func (m Matcher) Match(sentence, chunk string) bool {
	heard := Normalize(chunk)
	if heard == "" {
		return false
	}
	keywords := m.Keywords(sentence)
	for _, k := range keywords {
		if strings.Contains(heard, k) {
			return true
		}
	}
	if m.Phonetic {
		return m.soundsLike(keywords, strings.Fields(heard))
	}
	return false
}

func (m Matcher) soundsLike(keywords, spoken []string) bool {
	threshold := m.PhoneticScore
	if threshold <= 0 {
		threshold = defaultPhoneticScore
	}
	for _, k := range keywords {
		kp, ks := matchr.DoubleMetaphone(k)
		for _, s := range spoken {
			sp, ss := matchr.DoubleMetaphone(s)
			if !codesOverlap(kp, ks, sp, ss) {
				continue
			}
			if matchr.JaroWinkler(k, s, false) >= threshold {
				return true
			}
		}
	}
	return false
}

// codesOverlap reports whether two Double Metaphone code pairs share a
// non-empty code.
func codesOverlap(ap, as, bp, bs string) bool {
	for _, a := range []string{ap, as} {
		if a == "" {
			continue
		}
		if a == bp || a == bs {
			return true
		}
	}
	return false
}
