//go:build !gui

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/metcalfc/lumina/internal/navigator"
	"github.com/metcalfc/lumina/internal/store"
)

const minTitleWidth = 12

var (
	boldStyle    = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// terminalWidth returns the width of stdout, or 0 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

// printActive prints the active sentence with its bionic emphasis.
func printActive(w io.Writer, nav *navigator.Navigator) {
	sv, ok := nav.RenderSentence(nav.ActiveIndex())
	if !ok {
		return
	}
	parts := make([]string, len(sv.Words))
	for i, word := range sv.Words {
		parts[i] = boldStyle.Render(word.Bold) + word.Regular
	}
	current, total := nav.Progress()
	if _, err := fmt.Fprintf(w, "[%d/%d] %s\n", current, total, strings.Join(parts, " ")); err != nil {
		// Best-effort output.
		_ = err
	}
}

func writeReport(w io.Writer, docs []store.DocumentSummary, sessions []store.Session, words []store.WordCount, width int) error {
	var lines []string

	lines = append(lines, sectionStyle.Render("Documents"))
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []string{
			d.Title,
			strconv.Itoa(d.Sessions),
			progressCell(d.Furthest, d.Sentences),
			strconv.Itoa(d.Simplified),
			d.LastRead.Local().Format("2006-01-02 15:04"),
		})
	}
	fitTitles(rows, width, []string{"TITLE", "SESSIONS", "FURTHEST", "SIMPLIFIED", "LAST READ"})
	lines = append(lines, formatTable([]string{"TITLE", "SESSIONS", "FURTHEST", "SIMPLIFIED", "LAST READ"}, rows, map[int]bool{1: true, 3: true})...)

	if len(sessions) > 0 {
		lines = append(lines, "", sectionStyle.Render("Recent sessions"))
		rows = rows[:0]
		for _, s := range sessions {
			rows = append(rows, []string{
				s.Title,
				s.EndedAt.Local().Format("2006-01-02 15:04"),
				formatDuration(s.EndedAt.Sub(s.StartedAt)),
				fmt.Sprintf("%d→%d", s.StartIndex+1, s.EndIndex+1),
				strconv.Itoa(s.VoiceAdvances),
				strconv.Itoa(s.Simplified),
			})
		}
		headers := []string{"TITLE", "ENDED", "TIME", "SENTENCES", "BY VOICE", "SIMPLIFIED"}
		fitTitles(rows, width, headers)
		lines = append(lines, formatTable(headers, rows, map[int]bool{2: true, 4: true, 5: true})...)
	}

	if len(words) > 0 {
		lines = append(lines, "", sectionStyle.Render("Most simplified"))
		rows = rows[:0]
		for _, wc := range words {
			rows = append(rows, []string{wc.Original, wc.Replacement, strconv.Itoa(wc.Count)})
		}
		lines = append(lines, formatTable([]string{"WORD", "SIMPLER", "TIMES"}, rows, map[int]bool{2: true})...)
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func progressCell(furthest, sentences int) string {
	if sentences <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d%%", (furthest+1)*100/sentences)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return d.String()
	}
	return d.Round(time.Minute).String()
}

// fitTitles truncates the first column so rows fit in width. A width of 0
// leaves rows untouched.
func fitTitles(rows [][]string, width int, headers []string) {
	if width <= 0 || len(rows) == 0 {
		return
	}
	other := 0
	for col := 1; col < len(headers); col++ {
		w := displayWidth(headers[col])
		for _, row := range rows {
			if col < len(row) {
				w = max(w, displayWidth(row[col]))
			}
		}
		other += w + 1
	}
	limit := max(width-other, minTitleWidth)
	for _, row := range rows {
		row[0] = runewidth.Truncate(row[0], limit, "…")
	}
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = displayWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := displayWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
