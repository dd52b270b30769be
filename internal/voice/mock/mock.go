// Package mock provides test doubles for the voice package interfaces.
//
// Use Recognizer to script which sessions (or errors) successive Start calls
// produce. Use Session to feed controlled Result values and end the stream
// with a chosen error.
//
// Example:
//
//	sess := mock.NewSession(4)
//	rec := &mock.Recognizer{Sessions: []*mock.Session{sess}}
//	adv := voice.NewAdvancer(rec, nav, voice.Options{})
//	sess.Send(voice.Result{Text: "brown fox", IsFinal: true})
//	sess.End(nil)
package mock

import (
	"context"
	"sync"

	"github.com/metcalfc/lumina/internal/voice"
)

// Recognizer is a mock implementation of voice.Recognizer.
type Recognizer struct {
	mu sync.Mutex

	// Sessions are returned by successive Start calls, in order. Once they
	// are used up Start returns a fresh Session with a buffer of 16.
	Sessions []*Session

	// StartErrs, if non-empty, are returned by successive Start calls before
	// any session is handed out. A nil entry means "succeed".
	StartErrs []error

	// StartCalls counts calls to Start.
	StartCalls int

	// Started records every session handed out.
	Started []*Session
}

// Start records the call and returns the next scripted session or error.
func (r *Recognizer) Start(_ context.Context) (voice.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StartCalls++
	if len(r.StartErrs) > 0 {
		err := r.StartErrs[0]
		r.StartErrs = r.StartErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	var s *Session
	if len(r.Sessions) > 0 {
		s = r.Sessions[0]
		r.Sessions = r.Sessions[1:]
	} else {
		s = NewSession(16)
	}
	r.Started = append(r.Started, s)
	return s, nil
}

// StartCallCount returns the number of Start calls. Thread-safe.
func (r *Recognizer) StartCallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.StartCalls
}

// Last returns the most recently started session, or nil.
func (r *Recognizer) Last() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Started) == 0 {
		return nil
	}
	return r.Started[len(r.Started)-1]
}

// Ensure Recognizer implements voice.Recognizer at compile time.
var _ voice.Recognizer = (*Recognizer)(nil)

// Session is a mock implementation of voice.Session.
type Session struct {
	mu     sync.Mutex
	ch     chan voice.Result
	err    error
	closed bool

	// CloseErr, if non-nil, is returned by Close.
	CloseErr error

	// CloseCallCount is the number of times Close was called.
	CloseCallCount int
}

// NewSession returns a Session whose results channel holds buffer values.
func NewSession(buffer int) *Session {
	return &Session{ch: make(chan voice.Result, buffer)}
}

// Send queues r. It reports false if the session has already ended.
func (s *Session) Send(r voice.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.ch <- r
	return true
}

// End closes the stream as if the recognizer stopped on its own with err.
func (s *Session) End(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.err = err
	s.closed = true
	close(s.ch)
}

// Results returns the results channel.
func (s *Session) Results() <-chan voice.Result {
	return s.ch
}

// Err returns the error passed to End.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close records the call, ends the stream and returns CloseErr.
func (s *Session) Close() error {
	s.mu.Lock()
	s.CloseCallCount++
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	err := s.CloseErr
	s.mu.Unlock()
	return err
}

// Closed reports whether the stream has ended.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Ensure Session implements voice.Session at compile time.
var _ voice.Session = (*Session)(nil)
