package voice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// exitNoPerm is EX_NOPERM from sysexits.h. A transcriber exits with it when
// the microphone is not available to it.
const exitNoPerm = 77

// CommandRecognizer runs an external transcriber and reads one result per
// line of its standard output. A line starting with '~' is a partial result;
// any other non-empty line is final.
type CommandRecognizer struct {
	Path string
	Args []string
}

// ParseLine turns one line of transcriber output into a Result. Blank lines
// report false.
func ParseLine(line string) (Result, bool) {
	line = strings.TrimSpace(line)
	partial := strings.HasPrefix(line, "~")
	if partial {
		line = strings.TrimSpace(line[1:])
	}
	if line == "" {
		return Result{}, false
	}
	return Result{Text: line, IsFinal: !partial}, true
}

// Start launches the transcriber. The process is stopped when the session is
// closed or ctx is cancelled.
func (c *CommandRecognizer) Start(ctx context.Context) (Session, error) {
	if c.Path == "" {
		return nil, errors.New("voice: no recognizer command configured")
	}
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("voice: %s: %w", c.Path, err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("voice: %s: %w", c.Path, err)
	}

	s := &commandSession{
		cmd:     cmd,
		ctx:     ctx,
		cancel:  cancel,
		results: make(chan Result, 16),
		done:    make(chan struct{}),
	}
	go s.read(stdout)
	return s, nil
}

type commandSession struct {
	cmd     *exec.Cmd
	ctx     context.Context
	cancel  context.CancelFunc
	results chan Result
	done    chan struct{}

	mu     sync.Mutex
	err    error
	closed bool
}

func (s *commandSession) read(stdout io.Reader) {
	defer close(s.done)
	defer close(s.results)

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		r, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		select {
		case s.results <- r:
		case <-s.ctx.Done():
		}
	}
	waitErr := s.cmd.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	var exitErr *exec.ExitError
	switch {
	case errors.As(waitErr, &exitErr) && exitErr.ExitCode() == exitNoPerm:
		s.err = fmt.Errorf("%w: %s exited with status %d", ErrPermissionDenied, s.cmd.Path, exitNoPerm)
	case waitErr != nil:
		s.err = fmt.Errorf("voice: %s: %w", s.cmd.Path, waitErr)
	}
}

func (s *commandSession) Results() <-chan Result {
	return s.results
}

func (s *commandSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the transcriber and waits for it to exit.
func (s *commandSession) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	<-s.done
	return nil
}
