package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format defines a file format reader for extracting text.
type Format interface {
	Name() string
	Extensions() []string
	Extract(filename string) (string, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// lookup returns the registered format for filename, or nil.
func lookup(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f
			}
		}
	}
	return nil
}

// ExtractText extracts text from a file, using a registered format or plain text fallback.
func ExtractText(filename string) (string, error) {
	if f := lookup(filename); f != nil {
		return f.Extract(filename)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Open extracts a file into a Document. Formats implementing
// DocumentExtractor contribute headings; everything else is split as plain
// text.
func Open(filename string) (*Document, error) {
	f := lookup(filename)
	if de, ok := f.(DocumentExtractor); ok {
		doc, err := de.ExtractDocument(filename)
		if err != nil {
			return nil, fmt.Errorf("reader: %s: %w", f.Name(), err)
		}
		return doc, nil
	}
	text, err := ExtractText(filename)
	if err != nil {
		return nil, err
	}
	return FromText(text), nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}
