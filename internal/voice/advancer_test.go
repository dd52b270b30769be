package voice_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/metcalfc/lumina/internal/navigator"
	"github.com/metcalfc/lumina/internal/observe"
	"github.com/metcalfc/lumina/internal/voice"
	"github.com/metcalfc/lumina/internal/voice/mock"
)

const text = "I saw a brown fox. Then it ran away. The end came."

type harness struct {
	nav     *navigator.Navigator
	rec     *mock.Recognizer
	adv     *voice.Advancer
	notices []error
}

func newHarness(t *testing.T, opts voice.Options, sessions ...*mock.Session) *harness {
	t.Helper()
	h := &harness{
		nav: navigator.New(navigator.Options{}),
		rec: &mock.Recognizer{Sessions: sessions},
	}
	h.nav.Load(text)
	opts.OnNotice = func(err error) { h.notices = append(h.notices, err) }
	h.adv = voice.NewAdvancer(h.rec, h.nav, opts)
	return h
}

func final(s string) voice.Result   { return voice.Result{Text: s, IsFinal: true} }
func partial(s string) voice.Result { return voice.Result{Text: s} }

// Scenario: one qualifying chunk advances exactly once, however many
// keywords it contains.
func TestHandleResultAdvancesOncePerChunk(t *testing.T) {
	h := newHarness(t, voice.Options{})
	require.NoError(t, h.adv.Start(context.Background()))

	assert.True(t, h.adv.HandleResult(final("the quick brown fox")))
	assert.Equal(t, 1, h.nav.ActiveIndex())

	assert.False(t, h.adv.HandleResult(final("hello")))
	assert.Equal(t, 1, h.nav.ActiveIndex())
}

func TestHandleResultPartials(t *testing.T) {
	h := newHarness(t, voice.Options{})
	require.NoError(t, h.adv.Start(context.Background()))
	assert.True(t, h.adv.HandleResult(partial("brown")))
	assert.Equal(t, 1, h.nav.ActiveIndex())

	finals := newHarness(t, voice.Options{FinalsOnly: true})
	require.NoError(t, finals.adv.Start(context.Background()))
	assert.False(t, finals.adv.HandleResult(partial("brown")))
	assert.True(t, finals.adv.HandleResult(final("brown")))
}

func TestHandleResultIgnoredWhenIdle(t *testing.T) {
	h := newHarness(t, voice.Options{})
	assert.False(t, h.adv.HandleResult(final("brown fox")))
	assert.Equal(t, 0, h.nav.ActiveIndex())
}

func TestHandleResultAtLastSentence(t *testing.T) {
	h := newHarness(t, voice.Options{})
	require.NoError(t, h.adv.Start(context.Background()))
	h.nav.FocusSentence(2)

	assert.False(t, h.adv.HandleResult(final("the end came")))
	assert.Equal(t, 2, h.nav.ActiveIndex())
}

func TestStartStop(t *testing.T) {
	sess := mock.NewSession(4)
	h := newHarness(t, voice.Options{}, sess)
	ctx := context.Background()

	require.NoError(t, h.adv.Start(ctx))
	assert.True(t, h.adv.Listening())
	assert.Same(t, sess, h.adv.Session())

	require.NoError(t, h.adv.Start(ctx), "second Start is a no-op")
	assert.Equal(t, 1, h.rec.StartCallCount())

	require.NoError(t, h.adv.Stop())
	assert.False(t, h.adv.Listening())
	assert.Nil(t, h.adv.Session())
	assert.True(t, sess.Closed())

	assert.ErrorIs(t, h.adv.Stop(), voice.ErrNotListening)
	assert.Empty(t, h.notices)
}

func TestToggle(t *testing.T) {
	h := newHarness(t, voice.Options{})
	ctx := context.Background()

	require.NoError(t, h.adv.Toggle(ctx))
	assert.True(t, h.adv.Listening())
	require.NoError(t, h.adv.Toggle(ctx))
	assert.False(t, h.adv.Listening())
}

func TestStopDiscardsQueuedResults(t *testing.T) {
	sess := mock.NewSession(4)
	h := newHarness(t, voice.Options{})
	h.rec.Sessions = []*mock.Session{sess}
	ctx := context.Background()

	require.NoError(t, h.adv.Start(ctx))
	require.True(t, h.adv.HandleResult(final("brown fox")))
	sess.Send(final("ran away"))

	require.NoError(t, h.adv.Stop())
	assert.False(t, h.adv.HandleResult(<-sess.Results()))
	assert.Equal(t, 1, h.nav.ActiveIndex(), "earlier advance stays")

	assert.NoError(t, h.adv.HandleEnd(ctx, sess))
	assert.Equal(t, 1, h.rec.StartCallCount(), "no restart after Stop")
}

func TestPermissionDeniedOnStart(t *testing.T) {
	h := newHarness(t, voice.Options{})
	h.rec.StartErrs = []error{fmt.Errorf("%w: mic blocked", voice.ErrPermissionDenied)}

	err := h.adv.Start(context.Background())
	require.ErrorIs(t, err, voice.ErrPermissionDenied)
	assert.False(t, h.adv.Listening())
	require.Len(t, h.notices, 1)
	assert.ErrorIs(t, h.notices[0], voice.ErrPermissionDenied)

	assert.True(t, h.nav.GoNext(), "manual navigation still works")
}

func TestStartFailure(t *testing.T) {
	h := newHarness(t, voice.Options{})
	h.rec.StartErrs = []error{errors.New("no such device")}

	err := h.adv.Start(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, voice.ErrPermissionDenied)
	assert.False(t, h.adv.Listening())
	assert.Empty(t, h.notices)
}

func TestPermissionDeniedAtEnd(t *testing.T) {
	sess := mock.NewSession(1)
	h := newHarness(t, voice.Options{}, sess)
	ctx := context.Background()
	require.NoError(t, h.adv.Start(ctx))

	sess.End(voice.ErrPermissionDenied)
	err := h.adv.HandleEnd(ctx, sess)
	require.ErrorIs(t, err, voice.ErrPermissionDenied)
	assert.False(t, h.adv.Listening())

	// The same end seen twice produces a single notice.
	assert.NoError(t, h.adv.HandleEnd(ctx, sess))
	assert.Len(t, h.notices, 1)
	assert.Equal(t, 1, h.rec.StartCallCount())
}

func TestUnexpectedEndRestarts(t *testing.T) {
	first := mock.NewSession(1)
	second := mock.NewSession(1)
	h := newHarness(t, voice.Options{}, first, second)
	ctx := context.Background()
	require.NoError(t, h.adv.Start(ctx))

	first.End(errors.New("network hiccup"))
	require.NoError(t, h.adv.HandleEnd(ctx, first))

	assert.True(t, h.adv.Listening())
	assert.Same(t, second, h.adv.Session())
	assert.Equal(t, 2, h.rec.StartCallCount())
	assert.Empty(t, h.notices)

	// A late end of the replaced session is ignored.
	assert.NoError(t, h.adv.HandleEnd(ctx, first))
	assert.Equal(t, 2, h.rec.StartCallCount())
}

func TestGivesUpAfterEmptyRestarts(t *testing.T) {
	h := newHarness(t, voice.Options{MaxRestarts: 2})
	ctx := context.Background()
	require.NoError(t, h.adv.Start(ctx))

	end := func() error {
		sess := h.rec.Last()
		sess.End(nil)
		return h.adv.HandleEnd(ctx, sess)
	}

	require.NoError(t, end())
	require.False(t, h.adv.HandleResult(final("nothing relevant")))
	// The result above resets the empty-session count.
	require.NoError(t, end())
	require.NoError(t, end())

	err := end()
	require.ErrorIs(t, err, voice.ErrGaveUp)
	assert.False(t, h.adv.Listening())
	require.Len(t, h.notices, 1)
	assert.ErrorIs(t, h.notices[0], voice.ErrGaveUp)
}

func TestDefaultKeepsRestartingWhileListening(t *testing.T) {
	h := newHarness(t, voice.Options{})
	ctx := context.Background()
	require.NoError(t, h.adv.Start(ctx))

	for i := 1; i <= 25; i++ {
		sess := h.rec.Last()
		sess.End(nil)
		require.NoError(t, h.adv.HandleEnd(ctx, sess), "end %d", i)
		require.True(t, h.adv.Listening(), "listening after end %d", i)
		assert.NotSame(t, sess, h.adv.Session())
	}
	assert.Equal(t, 26, h.rec.StartCallCount())
	assert.Empty(t, h.notices)
}

func TestRestartDeniedStopsListening(t *testing.T) {
	first := mock.NewSession(1)
	h := newHarness(t, voice.Options{}, first)
	ctx := context.Background()
	require.NoError(t, h.adv.Start(ctx))
	h.rec.StartErrs = []error{voice.ErrPermissionDenied}

	first.End(nil)
	err := h.adv.HandleEnd(ctx, first)
	require.ErrorIs(t, err, voice.ErrPermissionDenied)
	assert.False(t, h.adv.Listening())
	assert.Len(t, h.notices, 1)
}

func TestRun(t *testing.T) {
	sess := mock.NewSession(4)
	sess.Send(partial("i saw"))
	sess.Send(final("a brown fox"))
	sess.Send(final("then it ran away"))
	sess.End(voice.ErrPermissionDenied)

	h := newHarness(t, voice.Options{}, sess)
	err := h.adv.Run(context.Background())

	require.ErrorIs(t, err, voice.ErrPermissionDenied)
	assert.Equal(t, 2, h.nav.ActiveIndex())
	assert.False(t, h.adv.Listening())
	assert.Len(t, h.notices, 1)
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness(t, voice.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.adv.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, h.adv.Listening())
	assert.True(t, h.rec.Last().Closed())
}

func TestMetrics(t *testing.T) {
	mr := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(mr))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	require.NoError(t, err)

	first := mock.NewSession(1)
	second := mock.NewSession(1)
	h := newHarness(t, voice.Options{Metrics: m}, first, second)
	ctx := context.Background()
	require.NoError(t, h.adv.Start(ctx))
	h.adv.HandleResult(final("brown fox"))
	first.End(nil)
	require.NoError(t, h.adv.HandleEnd(ctx, first))
	second.End(voice.ErrPermissionDenied)
	require.Error(t, h.adv.HandleEnd(ctx, second))

	var rm metricdata.ResourceMetrics
	require.NoError(t, mr.Collect(ctx, &rm))
	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if sum, ok := met.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[met.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), totals["lumina.voice.matches"])
	assert.Equal(t, int64(1), totals["lumina.voice.restarts"])
	assert.Equal(t, int64(1), totals["lumina.voice.denials"])
	assert.Equal(t, int64(0), totals["lumina.voice.listening"])
}
