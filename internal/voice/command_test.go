package voice

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shell(t *testing.T, script string) *CommandRecognizer {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return &CommandRecognizer{Path: sh, Args: []string{"-c", script}}
}

func drain(s Session) []Result {
	var out []Result
	for r := range s.Results() {
		out = append(out, r)
	}
	return out
}

func TestCommandRecognizer(t *testing.T) {
	rec := shell(t, `printf '~the quick\n\nthe quick brown fox\n'`)

	sess, err := rec.Start(context.Background())
	require.NoError(t, err)
	defer sess.Close()

	got := drain(sess)
	assert.Equal(t, []Result{
		{Text: "the quick", IsFinal: false},
		{Text: "the quick brown fox", IsFinal: true},
	}, got)
	assert.NoError(t, sess.Err())
}

func TestCommandRecognizerPermissionExit(t *testing.T) {
	rec := shell(t, `exit 77`)

	sess, err := rec.Start(context.Background())
	require.NoError(t, err)
	defer sess.Close()

	assert.Empty(t, drain(sess))
	assert.ErrorIs(t, sess.Err(), ErrPermissionDenied)
}

func TestCommandRecognizerFailureExit(t *testing.T) {
	rec := shell(t, `exit 3`)

	sess, err := rec.Start(context.Background())
	require.NoError(t, err)
	defer sess.Close()

	drain(sess)
	err = sess.Err()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
}

func TestCommandRecognizerClose(t *testing.T) {
	rec := shell(t, `echo ready; exec sleep 30`)

	sess, err := rec.Start(context.Background())
	require.NoError(t, err)

	r := <-sess.Results()
	assert.Equal(t, "ready", r.Text)

	require.NoError(t, sess.Close())
	for range sess.Results() {
	}
	assert.NoError(t, sess.Err(), "a closed session ends cleanly")
	require.NoError(t, sess.Close(), "Close is idempotent")
}

func TestCommandRecognizerMissingBinary(t *testing.T) {
	rec := &CommandRecognizer{Path: "/nonexistent/transcriber"}
	_, err := rec.Start(context.Background())
	assert.Error(t, err)

	_, err = (&CommandRecognizer{}).Start(context.Background())
	assert.Error(t, err)
}
