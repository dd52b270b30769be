package reader

// TOCEntry represents a single entry in a table of contents
type TOCEntry struct {
	Title         string
	Preview       string
	SentenceIndex int
	Level         int
}

// DocumentExtractor is an optional interface for formats that know their
// own structure (headings, sections).
type DocumentExtractor interface {
	ExtractDocument(filename string) (*Document, error)
}
