// Package observe provides the OpenTelemetry counters recorded while reading.
//
// Instruments are created through the OpenTelemetry Metrics API. Tests should
// use [NewMetrics] with an sdkmetric ManualReader; production code may use
// [DefaultMetrics], which binds to the global meter provider.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all lumina metrics.
const meterName = "github.com/metcalfc/lumina"

// Kinds of active-sentence change.
const (
	MoveNext     = "next"
	MovePrevious = "previous"
	MoveFocus    = "focus"
)

// Metrics holds the metric instruments for a reading session. All methods
// are safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	// Moves counts active-sentence changes. Use with attribute:
	//   attribute.String("kind", ...)
	Moves metric.Int64Counter

	// Simplifications counts applied word simplifications.
	Simplifications metric.Int64Counter

	// VoiceMatches counts transcripts that matched the active sentence.
	VoiceMatches metric.Int64Counter

	// VoiceRestarts counts transparent recognizer restarts.
	VoiceRestarts metric.Int64Counter

	// VoiceDenials counts recognizer permission denials.
	VoiceDenials metric.Int64Counter

	// Utterances counts sentences handed to the speech synthesizer.
	Utterances metric.Int64Counter

	// Listening tracks whether a recognizer session is open.
	Listening metric.Int64UpDownCounter
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider].
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Moves, err = m.Int64Counter("lumina.navigator.moves",
		metric.WithDescription("Active sentence changes by kind."),
	); err != nil {
		return nil, err
	}
	if met.Simplifications, err = m.Int64Counter("lumina.navigator.simplifications",
		metric.WithDescription("Words replaced by a simpler synonym."),
	); err != nil {
		return nil, err
	}
	if met.VoiceMatches, err = m.Int64Counter("lumina.voice.matches",
		metric.WithDescription("Transcripts that matched the end of the active sentence."),
	); err != nil {
		return nil, err
	}
	if met.VoiceRestarts, err = m.Int64Counter("lumina.voice.restarts",
		metric.WithDescription("Recognizer sessions restarted after an unexpected end."),
	); err != nil {
		return nil, err
	}
	if met.VoiceDenials, err = m.Int64Counter("lumina.voice.denials",
		metric.WithDescription("Recognizer sessions refused for lack of permission."),
	); err != nil {
		return nil, err
	}
	if met.Utterances, err = m.Int64Counter("lumina.speech.utterances",
		metric.WithDescription("Sentences handed to the speech synthesizer."),
	); err != nil {
		return nil, err
	}
	if met.Listening, err = m.Int64UpDownCounter("lumina.voice.listening",
		metric.WithDescription("Open recognizer sessions."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Panics if instrument creation
// fails, which does not happen with the global provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordMove counts one active-sentence change of the given kind.
func (m *Metrics) RecordMove(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.Moves.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordVoiceMatch counts one transcript that matched the active sentence.
func (m *Metrics) RecordVoiceMatch(ctx context.Context) {
	if m == nil {
		return
	}
	m.VoiceMatches.Add(ctx, 1)
}

// RecordSimplification counts one applied simplification.
func (m *Metrics) RecordSimplification(ctx context.Context) {
	if m == nil {
		return
	}
	m.Simplifications.Add(ctx, 1)
}

// RecordRestart counts one recognizer restart.
func (m *Metrics) RecordRestart(ctx context.Context) {
	if m == nil {
		return
	}
	m.VoiceRestarts.Add(ctx, 1)
}

// RecordDenial counts one recognizer permission denial.
func (m *Metrics) RecordDenial(ctx context.Context) {
	if m == nil {
		return
	}
	m.VoiceDenials.Add(ctx, 1)
}

// RecordUtterance counts one spoken sentence.
func (m *Metrics) RecordUtterance(ctx context.Context) {
	if m == nil {
		return
	}
	m.Utterances.Add(ctx, 1)
}

// RecordListening adjusts the open-session gauge by delta (+1 or -1).
func (m *Metrics) RecordListening(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.Listening.Add(ctx, delta)
}
