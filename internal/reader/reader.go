// Package reader extracts readable text from files and splits it into the
// sentences presented by the navigator.
package reader

import (
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/metcalfc/lumina/internal/bionic"
)

// Document is extracted text split into sentences, with headings mapped to
// the sentence they start at.
type Document struct {
	Title     string
	Sentences []string
	TOC       []TOCEntry
}

// Text returns the sentences joined by single spaces.
func (d *Document) Text() string {
	return strings.Join(d.Sentences, " ")
}

// Len returns the number of sentences.
func (d *Document) Len() int {
	return len(d.Sentences)
}

// FromText splits plain text into a Document with no headings.
func FromText(text string) *Document {
	var b builder
	b.paragraph(text)
	return b.finish()
}

// Read reads plain text from r.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return FromText(string(data)), nil
}

// builder accumulates paragraphs and headings in reading order.
type builder struct {
	doc Document
	// titled[i] is how many sentences heading text added for doc.TOC[i].
	titled []int
}

// paragraph appends the sentences of text. Whitespace runs, line breaks
// included, collapse to a single space.
func (b *builder) paragraph(text string) {
	text = strings.Join(strings.Fields(norm.NFC.String(text)), " ")
	b.doc.Sentences = append(b.doc.Sentences, bionic.SplitSentences(text)...)
}

// heading appends title as its own sentence(s) and records a TOC entry
// pointing at the first of them.
func (b *builder) heading(title string, level int) {
	title = strings.Join(strings.Fields(norm.NFC.String(title)), " ")
	if title == "" {
		return
	}
	b.doc.TOC = append(b.doc.TOC, TOCEntry{
		Title:         title,
		SentenceIndex: len(b.doc.Sentences),
		Level:         level,
	})
	split := bionic.SplitSentences(title)
	b.titled = append(b.titled, len(split))
	b.doc.Sentences = append(b.doc.Sentences, split...)
}

// markAt records a TOC entry pointing at sentence index without adding text.
func (b *builder) markAt(title string, level, index int) {
	title = strings.TrimSpace(norm.NFC.String(title))
	if title == "" {
		return
	}
	b.doc.TOC = append(b.doc.TOC, TOCEntry{
		Title:         title,
		SentenceIndex: index,
		Level:         level,
	})
	b.titled = append(b.titled, 0)
}

func (b *builder) finish() *Document {
	doc := b.doc
	var toc []TOCEntry
	for i, e := range doc.TOC {
		// Entries marked after the last sentence point nowhere.
		if e.SentenceIndex >= len(doc.Sentences) {
			continue
		}
		e.Preview = previewAfter(doc.Sentences, e.SentenceIndex+b.titled[i])
		toc = append(toc, e)
	}
	doc.TOC = toc
	return &doc
}

const previewWords = 10

// previewAfter returns the opening words of sentence i, the first one after
// any heading text.
func previewAfter(sentences []string, i int) string {
	if i >= len(sentences) {
		return ""
	}
	words := strings.Fields(sentences[i])
	if len(words) > previewWords {
		return strings.Join(words[:previewWords], " ") + "..."
	}
	return strings.Join(words, " ")
}
