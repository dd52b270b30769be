package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/metcalfc/lumina/internal/navigator"
)

type styledToken struct {
	s       string
	width   int
	isSpace bool
}

var spaceToken = styledToken{s: " ", width: 1, isSpace: true}

type wordStyle struct {
	bold, regular lipgloss.Style
}

// buildSentenceTokens renders the words of one sentence. cursor is the word
// index to underline, or -1.
func buildSentenceTokens(sv navigator.SentenceView, heading bool, cursor int) []styledToken {
	out := make([]styledToken, 0, 2*len(sv.Words))
	for j, w := range sv.Words {
		if j > 0 {
			out = append(out, spaceToken)
		}
		st := styleFor(sv.Active, heading, w)
		if j == cursor {
			st.bold = st.bold.Underline(true)
			st.regular = st.regular.Underline(true)
		}
		s := st.bold.Render(w.Bold)
		if w.Regular != "" {
			s += st.regular.Render(w.Regular)
		}
		out = append(out, styledToken{
			s:     s,
			width: runewidth.StringWidth(w.Bold + w.Regular),
		})
	}
	return out
}

func styleFor(active, heading bool, w navigator.WordView) wordStyle {
	var st wordStyle
	switch {
	case heading:
		st = wordStyle{headingStyle, headingStyle.Bold(false)}
	case active:
		st = wordStyle{activeBoldStyle, activeRegularStyle}
	default:
		st = wordStyle{dimBoldStyle, dimRegularStyle}
	}
	switch {
	case w.Simplified:
		st.bold = st.bold.Foreground(simplifiedStyle.GetForeground())
		st.regular = st.regular.Foreground(simplifiedStyle.GetForeground())
	case w.Simplifiable:
		st.regular = st.regular.Foreground(simplifiableStyle.GetForeground())
	}
	return st
}

func renderTokens(tokens []styledToken) string {
	var b strings.Builder
	for _, item := range tokens {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapTokens breaks tokens into lines no wider than width, at spaces. A
// single token wider than width gets a line of its own.
func wrapTokens(tokens []styledToken, width int) []string {
	if width <= 0 {
		return []string{renderTokens(tokens)}
	}
	var lines []string
	line := make([]styledToken, 0, len(tokens))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(tokens); {
		item := tokens[i]
		if item.isSpace && len(line) == 0 {
			i++
			continue
		}
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				lines = append(lines, renderTokens(line[:lastSpaceIdx]))
				line = append([]styledToken{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				lines = append(lines, renderTokens(line))
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	return append(lines, renderTokens(line))
}

func lineWidthOf(line []styledToken) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledToken) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
