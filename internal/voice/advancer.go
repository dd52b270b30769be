package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/metcalfc/lumina/internal/observe"
)

// Target is the reading position the Advancer moves. *navigator.Navigator
// satisfies it.
type Target interface {
	ActiveSentence() (string, bool)
	GoNext() bool
}

// Options configures an Advancer.
type Options struct {
	Matcher Matcher

	// FinalsOnly ignores partial transcripts.
	FinalsOnly bool

	// MaxRestarts, when positive, is how many consecutive sessions may end
	// without a single transcript before listening stops with ErrGaveUp.
	// Zero or a negative value restarts for as long as listening is on.
	MaxRestarts int

	// OnNotice is called once each time listening stops for a reason the
	// user should hear about, such as ErrPermissionDenied or ErrGaveUp. It is
	// called without internal locks held.
	OnNotice func(err error)

	Metrics *observe.Metrics
	Logger  *slog.Logger
}

// Advancer is the listening state machine: idle until Start, listening until
// Stop, a permission denial, or too many empty restarts.
//
// Start, Stop, Listening and Session are safe for concurrent use.
// HandleResult and HandleEnd drive the Target and must be called from the
// goroutine that owns it.
type Advancer struct {
	rec    Recognizer
	target Target
	opts   Options
	log    *slog.Logger

	mu        sync.Mutex
	listening bool
	session   Session
	empty     int // consecutive session ends without a result
}

// NewAdvancer returns an idle Advancer.
func NewAdvancer(rec Recognizer, target Target, opts Options) *Advancer {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Advancer{rec: rec, target: target, opts: opts, log: log}
}

// Listening reports whether the Advancer is listening.
func (a *Advancer) Listening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listening
}

// Session returns the open session, or nil when idle. Results read from any
// other session are stale and must be dropped.
func (a *Advancer) Session() Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Start opens a recognition session and begins listening. Starting while
// already listening does nothing.
func (a *Advancer) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.listening {
		a.mu.Unlock()
		return nil
	}
	a.empty = 0
	err := a.open(ctx)
	if err == nil {
		a.listening = true
		a.opts.Metrics.RecordListening(ctx, 1)
		a.log.Info("voice: listening")
	}
	a.mu.Unlock()

	if errors.Is(err, ErrPermissionDenied) {
		a.notice(err)
	}
	return err
}

// open starts a session. Called with mu held.
func (a *Advancer) open(ctx context.Context) error {
	sess, err := a.rec.Start(ctx)
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			a.opts.Metrics.RecordDenial(ctx)
			a.log.Warn("voice: permission denied", "err", err)
			return err
		}
		return fmt.Errorf("voice: start: %w", err)
	}
	a.session = sess
	return nil
}

// Stop stops listening and closes the session. Results still queued on it
// are discarded; advances already made stay.
func (a *Advancer) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.listening {
		return ErrNotListening
	}
	return a.stop(context.Background())
}

// stop closes the session and goes idle. Called with mu held.
func (a *Advancer) stop(ctx context.Context) error {
	sess := a.session
	a.session = nil
	a.listening = false
	a.opts.Metrics.RecordListening(ctx, -1)
	a.log.Info("voice: stopped listening")
	if sess == nil {
		return nil
	}
	if err := sess.Close(); err != nil {
		return fmt.Errorf("voice: close: %w", err)
	}
	return nil
}

// Toggle starts listening when idle and stops it otherwise.
func (a *Advancer) Toggle(ctx context.Context) error {
	if a.Listening() {
		return a.Stop()
	}
	return a.Start(ctx)
}

func (a *Advancer) notice(err error) {
	if a.opts.OnNotice != nil {
		a.opts.OnNotice(err)
	}
}

// HandleResult processes one transcript chunk. When the chunk contains a
// keyword of the active sentence the Target moves to the next sentence,
// exactly once per chunk. It reports whether an advance happened.
func (a *Advancer) HandleResult(r Result) bool {
	a.mu.Lock()
	listening := a.listening
	if listening {
		a.empty = 0
	}
	a.mu.Unlock()

	if !listening {
		return false
	}
	if a.opts.FinalsOnly && !r.IsFinal {
		return false
	}
	sentence, ok := a.target.ActiveSentence()
	if !ok || !a.opts.Matcher.Match(sentence, r.Text) {
		return false
	}
	if !a.target.GoNext() {
		return false
	}
	a.opts.Metrics.RecordVoiceMatch(context.Background())
	a.log.Debug("voice: advanced", "heard", r.Text, "final", r.IsFinal)
	return true
}

// HandleEnd processes the end of sess. A permission denial stops listening
// and is returned. Any other end restarts listening transparently. With a
// positive MaxRestarts, too many sessions in a row ending without a
// transcript stop listening with ErrGaveUp. Ends of stale sessions are
// ignored.
//
// Every error returned has also been passed to OnNotice.
func (a *Advancer) HandleEnd(ctx context.Context, sess Session) error {
	err := a.handleEnd(ctx, sess)
	if err != nil {
		a.notice(err)
	}
	return err
}

func (a *Advancer) handleEnd(ctx context.Context, sess Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.listening || sess != a.session {
		return nil
	}

	err := sess.Err()
	if errors.Is(err, ErrPermissionDenied) {
		a.opts.Metrics.RecordDenial(ctx)
		a.log.Warn("voice: permission denied", "err", err)
		_ = a.stop(ctx)
		return err
	}

	a.empty++
	if a.opts.MaxRestarts > 0 && a.empty > a.opts.MaxRestarts {
		a.log.Warn("voice: giving up", "restarts", a.opts.MaxRestarts, "err", err)
		_ = a.stop(ctx)
		return ErrGaveUp
	}

	a.log.Debug("voice: restarting", "attempt", a.empty, "err", err)
	_ = sess.Close()
	a.session = nil
	if err := a.open(ctx); err != nil {
		a.log.Warn("voice: restart failed", "err", err)
		_ = a.stop(ctx)
		return err
	}
	a.opts.Metrics.RecordRestart(ctx)
	return nil
}

// Run listens until ctx is done, Stop is called, or listening ends with an
// error. It must be the only user of the Target while it runs.
func (a *Advancer) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	for {
		sess := a.Session()
		if sess == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			if err := a.Stop(); err != nil && !errors.Is(err, ErrNotListening) {
				a.log.Warn("voice: stop", "err", err)
			}
			return ctx.Err()
		case r, ok := <-sess.Results():
			if !ok {
				if err := a.HandleEnd(ctx, sess); err != nil {
					return err
				}
				continue
			}
			if a.Session() == sess {
				a.HandleResult(r)
			}
		}
	}
}
