package reader

import (
	"fmt"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// EPUBFormat implements Format for EPUB files.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }
func (f *EPUBFormat) Extract(filename string) (string, error) {
	doc, err := f.ExtractDocument(filename)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

// ExtractDocument reads every spine item in order. Headings inside the
// XHTML content become TOC entries; a spine item without one gets an entry
// titled "Section N" so every chapter stays reachable.
func (f *EPUBFormat) ExtractDocument(filename string) (*Document, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub")
	}

	book := rc.Rootfiles[0]
	var b builder

	for i, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}

		start, headings := len(b.doc.Sentences), len(b.doc.TOC)
		_, err = walkHTML(&b, r)
		r.Close()
		if err != nil {
			continue
		}

		if len(b.doc.TOC) == headings && len(b.doc.Sentences) > start {
			b.markAt(fmt.Sprintf("Section %d", i+1), 0, start)
		}
	}

	doc := b.finish()
	doc.Title = strings.TrimSpace(book.Title)
	return doc, nil
}
