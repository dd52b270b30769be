// Package synonym maps hard words to simpler replacements.
package synonym

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Table is an immutable lookup from a lowercase bare word to a simpler
// lowercase bare word.
type Table struct {
	entries map[string]string
}

var builtin = map[string]string{
	"approximately": "about",
	"utilize":       "use",
	"facilitate":    "help",
	"construct":     "build",
	"observe":       "see",
	"demonstrate":   "show",
	"objective":     "goal",
	"initiate":      "start",
	"subsequently":  "later",
	"nevertheless":  "however",
}

// Default returns the built-in table.
func Default() *Table {
	return New(builtin)
}

// New builds a table from pairs. Keys and values are normalized; pairs that
// normalize to an empty key or value, or to a word mapping onto itself, are
// skipped.
func New(pairs map[string]string) *Table {
	t := &Table{entries: make(map[string]string, len(pairs))}
	for k, v := range pairs {
		t.add(k, v)
	}
	return t
}

func (t *Table) add(word, replacement string) bool {
	k, v := Normalize(word), Normalize(replacement)
	if k == "" || v == "" || k == v {
		return false
	}
	t.entries[k] = v
	return true
}

// Normalize lowercases word and strips every character that is not an ASCII
// letter, digit or underscore.
func Normalize(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range strings.ToLower(word) {
		if isWordRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Lookup returns the simpler replacement for word. Matching is case and
// punctuation insensitive but otherwise exact: inflected forms such as
// "utilized" do not match "utilize".
func (t *Table) Lookup(word string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.entries[Normalize(word)]
	return v, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Pair is a single table entry.
type Pair struct {
	Word        string
	Replacement string
}

// Pairs returns all entries sorted by word.
func (t *Table) Pairs() []Pair {
	if t == nil {
		return nil
	}
	out := make([]Pair, 0, len(t.entries))
	for k, v := range t.entries {
		out = append(out, Pair{Word: k, Replacement: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out
}

// Merge returns a new table holding t's entries overridden by other's.
func (t *Table) Merge(other *Table) *Table {
	merged := &Table{entries: make(map[string]string, t.Len()+other.Len())}
	if t != nil {
		for k, v := range t.entries {
			merged.entries[k] = v
		}
	}
	if other != nil {
		for k, v := range other.entries {
			merged.entries[k] = v
		}
	}
	return merged
}

// LoadFile reads "word replacement" pairs, one per line. Blank lines and lines
// starting with '#' are ignored. A pair may also be written "word=replacement".
func LoadFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only synonym file.
			_ = cerr
		}
	}()

	t := &Table{entries: map[string]string{}}
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(strings.Replace(line, "=", " ", 1))
		if len(fields) != 2 {
			return nil, fmt.Errorf("synonym: %s:%d: want \"word replacement\", got %q", path, lineNo, line)
		}
		t.add(fields[0], fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(t.entries) == 0 {
		return nil, fmt.Errorf("synonym: %s: no entries", path)
	}
	return t, nil
}
