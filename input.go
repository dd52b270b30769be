package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/metcalfc/lumina/internal/reader"
)

var errNoInput = errors.New("no input provided; provide a file or pipe text to stdin")

// loadDocument reads the file named by args, or stdin when args is empty and
// stdin is not a terminal.
func loadDocument(args []string) (*reader.Document, error) {
	stdinIsTerminal := term.IsTerminal(int(os.Stdin.Fd()))
	return loadDocumentFrom(args, os.Stdin, stdinIsTerminal)
}

func loadDocumentFrom(args []string, stdin io.Reader, stdinIsTerminal bool) (*reader.Document, error) {
	var doc *reader.Document
	if len(args) > 0 {
		var err error
		doc, err = reader.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read file '%s': %w", args[0], err)
		}
		if doc.Title == "" {
			doc.Title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
	} else {
		if stdinIsTerminal {
			return nil, errNoInput
		}
		var err error
		doc, err = reader.Read(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if doc.Title == "" {
			doc.Title = "stdin"
		}
	}
	if doc.Len() == 0 {
		return nil, errors.New("no text to read")
	}
	return doc, nil
}
