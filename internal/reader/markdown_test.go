package reader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestMarkdownTOC(t *testing.T) {
	mdFile := writeTemp(t, "test.md", `# Introduction
This is the introduction.

## Getting Started
Here's how to get started with the project.

### Prerequisites
You'll need these things installed.

## Usage
Here's how to use it.

# Advanced Topics
More complex stuff here.

## Configuration ##
Configure everything.
`)

	f := &MarkdownFormat{}
	doc, err := f.ExtractDocument(mdFile)
	if err != nil {
		t.Fatalf("ExtractDocument failed: %v", err)
	}

	if len(doc.TOC) != 6 {
		t.Fatalf("Expected 6 TOC entries, got %d", len(doc.TOC))
	}
	if doc.Len() != 12 {
		t.Errorf("Expected 12 sentences, got %d: %q", doc.Len(), doc.Sentences)
	}

	expectedLevels := []int{0, 1, 2, 1, 0, 1} // h1=0, h2=1, h3=2
	expectedTitles := []string{"Introduction", "Getting Started", "Prerequisites", "Usage", "Advanced Topics", "Configuration"}
	for i, entry := range doc.TOC {
		if entry.Level != expectedLevels[i] {
			t.Errorf("Entry %d (%s): expected level %d, got %d", i, entry.Title, expectedLevels[i], entry.Level)
		}
		if entry.Title != expectedTitles[i] {
			t.Errorf("Entry %d: expected title %q, got %q", i, expectedTitles[i], entry.Title)
		}
		// Each heading is its own sentence.
		if doc.Sentences[entry.SentenceIndex] != entry.Title {
			t.Errorf("Entry %d: sentence %d is %q, want heading %q", i, entry.SentenceIndex, doc.Sentences[entry.SentenceIndex], entry.Title)
		}
	}

	if doc.TOC[0].Preview != "This is the introduction." {
		t.Errorf("Preview = %q", doc.TOC[0].Preview)
	}
	if doc.Title != "Introduction" {
		t.Errorf("Title = %q, want Introduction", doc.Title)
	}
}

func TestMarkdownNoHeaders(t *testing.T) {
	mdFile := writeTemp(t, "plain.md", `This is just plain text.
No headers at all.
Just paragraphs
`)

	doc, err := (&MarkdownFormat{}).ExtractDocument(mdFile)
	if err != nil {
		t.Fatalf("ExtractDocument failed: %v", err)
	}
	if len(doc.TOC) != 0 {
		t.Errorf("Expected empty TOC for file without headers, got %d entries", len(doc.TOC))
	}
	expected := []string{"This is just plain text.", "No headers at all.", "Just paragraphs"}
	if len(doc.Sentences) != len(expected) {
		t.Fatalf("sentences = %q, want %q", doc.Sentences, expected)
	}
	for i := range expected {
		if doc.Sentences[i] != expected[i] {
			t.Errorf("sentence %d = %q, want %q", i, doc.Sentences[i], expected[i])
		}
	}
}

func TestMarkdownCleanup(t *testing.T) {
	mdFile := writeTemp(t, "lists.md", "Some **bold** and `code` text.\n\n- first item\n- second item\n\n```\nfunc main() {}\n```\n> quoted line\n")

	doc, err := (&MarkdownFormat{}).ExtractDocument(mdFile)
	if err != nil {
		t.Fatalf("ExtractDocument failed: %v", err)
	}
	expected := []string{"Some bold and code text.", "first item", "second item", "quoted line"}
	if len(doc.Sentences) != len(expected) {
		t.Fatalf("sentences = %q, want %q", doc.Sentences, expected)
	}
	for i := range expected {
		if doc.Sentences[i] != expected[i] {
			t.Errorf("sentence %d = %q, want %q", i, doc.Sentences[i], expected[i])
		}
	}
}

func TestMarkdownExtract(t *testing.T) {
	mdFile := writeTemp(t, "chapters.md", "# Chapter 1\nFirst chapter.\n\n# Chapter 2\nSecond chapter.\n")

	text, err := (&MarkdownFormat{}).Extract(mdFile)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if text != "Chapter 1 First chapter. Chapter 2 Second chapter." {
		t.Errorf("Extract = %q", text)
	}
}
