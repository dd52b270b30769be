package reader

import (
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLFormat implements Format for saved web pages.
type HTMLFormat struct{}

func init() {
	Register(&HTMLFormat{})
}

func (f *HTMLFormat) Name() string         { return "HTML" }
func (f *HTMLFormat) Extensions() []string { return []string{".html", ".htm", ".xhtml"} }

func (f *HTMLFormat) Extract(filename string) (string, error) {
	doc, err := f.ExtractDocument(filename)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}

// ExtractDocument reads the visible text of an HTML page. h1-h6 elements
// become TOC entries.
func (f *HTMLFormat) ExtractDocument(filename string) (*Document, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only page.
			_ = cerr
		}
	}()

	var b builder
	title, err := walkHTML(&b, file)
	if err != nil {
		return nil, err
	}
	doc := b.finish()
	doc.Title = title
	return doc, nil
}

// skipElements never contribute text: scripts, styles and form controls.
var skipElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Button:   true,
	atom.Input:    true,
	atom.Textarea: true,
	atom.Template: true,
}

// blockElements end the current paragraph.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Main: true, atom.Nav: true,
	atom.Aside: true, atom.Blockquote: true, atom.Pre: true, atom.Ul: true,
	atom.Ol: true, atom.Li: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Table: true, atom.Tr: true, atom.Td: true, atom.Th: true,
	atom.Figcaption: true, atom.Hr: true, atom.Body: true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 0, atom.H2: 1, atom.H3: 2, atom.H4: 3, atom.H5: 4, atom.H6: 5,
}

// walkHTML parses r and feeds its text into b. It returns the document
// title from <head>, if any.
func walkHTML(b *builder, r io.Reader) (string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	w := &htmlWalker{b: b}
	w.walk(root)
	w.flush()
	return w.title, nil
}

type htmlWalker struct {
	b     *builder
	title string
	text  strings.Builder
}

func (w *htmlWalker) flush() {
	if w.text.Len() > 0 {
		w.b.paragraph(w.text.String())
		w.text.Reset()
	}
}

func (w *htmlWalker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipElements[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Head {
			if t := findElement(n, atom.Title); t != nil && w.title == "" {
				w.title = strings.Join(strings.Fields(textContent(t)), " ")
			}
			return
		}
		if level, ok := headingLevels[n.DataAtom]; ok {
			w.flush()
			w.b.heading(textContent(n), level)
			return
		}
		if n.DataAtom == atom.Br {
			w.text.WriteByte(' ')
			return
		}
		if blockElements[n.DataAtom] {
			w.flush()
			defer w.flush()
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// textContent concatenates the text below n, skipping filtered elements.
func textContent(n *html.Node) string {
	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			out.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && skipElements[n.DataAtom] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out.String()
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
