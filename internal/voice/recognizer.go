// Package voice advances the reading position from speech. A Recognizer
// streams transcripts; the Advancer matches them against the tail of the
// active sentence and moves on when the reader has said it.
package voice

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied is reported by a Recognizer or Session when the
	// microphone may not be used. It ends listening until the user starts it
	// again.
	ErrPermissionDenied = errors.New("voice: microphone permission denied")

	// ErrNotListening is returned by operations that need an open session.
	ErrNotListening = errors.New("voice: not listening")

	// ErrGaveUp is reported when the recognizer kept ending without
	// producing any transcript.
	ErrGaveUp = errors.New("voice: recognizer keeps stopping")
)

// Result is one transcript chunk. Partial chunks may be revised by later
// chunks; final chunks are not.
type Result struct {
	Text    string
	IsFinal bool
}

// Session is one open recognition stream.
//
// Results is closed when the stream ends, either because Close was called or
// because the recognizer stopped on its own. Err then reports why; nil means a
// plain end of stream. Close is safe to call more than once.
type Session interface {
	Results() <-chan Result
	Err() error
	Close() error
}

// Recognizer opens recognition sessions.
type Recognizer interface {
	Start(ctx context.Context) (Session, error)
}
