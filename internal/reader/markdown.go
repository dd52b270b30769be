package reader

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// MarkdownFormat implements Format for Markdown files.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

func (f *MarkdownFormat) Extract(filename string) (string, error) {
	doc, err := f.ExtractDocument(filename)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

var (
	// headerRegex matches markdown headers (# to ######)
	headerRegex = regexp.MustCompile(`^(#{1,6})\s+(.+?)(?:\s+#+)?\s*$`)
	// markerRegex matches list and blockquote markers at the start of a line
	markerRegex = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)]|>)\s+`)
	// emphasisRegex matches inline emphasis and code delimiters
	emphasisRegex = regexp.MustCompile("\\*\\*|__|`")
)

// ExtractDocument reads a Markdown file. Each header becomes a standalone
// sentence and a TOC entry; consecutive non-blank lines form a paragraph.
func (f *MarkdownFormat) ExtractDocument(filename string) (*Document, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only markdown file.
			_ = cerr
		}
	}()

	var b builder
	var para []string
	flush := func() {
		if len(para) > 0 {
			b.paragraph(strings.Join(para, " "))
			para = nil
		}
	}

	inFence := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			flush()
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if match := headerRegex.FindStringSubmatch(trimmed); match != nil {
			flush()
			level := len(match[1]) - 1 // h1 = level 0, h2 = level 1, etc.
			b.heading(stripInline(match[2]), level)
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}
		if markerRegex.MatchString(line) {
			// List items and quotes start their own paragraph.
			flush()
		}
		para = append(para, stripInline(markerRegex.ReplaceAllString(line, "")))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	doc := b.finish()
	if len(doc.TOC) > 0 {
		doc.Title = doc.TOC[0].Title
	}
	return doc, nil
}

func stripInline(s string) string {
	return emphasisRegex.ReplaceAllString(s, "")
}
