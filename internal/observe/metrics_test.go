package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	met := findMetric(rm, name)
	if met == nil {
		t.Fatalf("metric %q not found", name)
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is not an int64 sum", name)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSimplification(ctx)
	m.RecordSimplification(ctx)
	m.RecordRestart(ctx)
	m.RecordDenial(ctx)
	m.RecordVoiceMatch(ctx)
	m.RecordUtterance(ctx)
	m.RecordUtterance(ctx)
	m.RecordUtterance(ctx)

	rm := collect(t, reader)

	tests := []struct {
		name string
		want int64
	}{
		{"lumina.navigator.simplifications", 2},
		{"lumina.voice.restarts", 1},
		{"lumina.voice.denials", 1},
		{"lumina.voice.matches", 1},
		{"lumina.speech.utterances", 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sumOf(t, rm, tc.name); got != tc.want {
				t.Errorf("%s = %d, want %d", tc.name, got, tc.want)
			}
		})
	}
}

func TestMoveAttributes(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordMove(ctx, MovePrevious)
	m.RecordMove(ctx, MoveNext)
	m.RecordMove(ctx, MoveNext)

	rm := collect(t, reader)
	met := findMetric(rm, "lumina.navigator.moves")
	if met == nil {
		t.Fatal("metric not found")
	}
	sum := met.Data.(metricdata.Sum[int64])
	byKind := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("kind"))
		byKind[v.AsString()] = dp.Value
	}
	if byKind[MovePrevious] != 1 || byKind[MoveNext] != 2 || byKind[MoveFocus] != 0 {
		t.Errorf("moves by kind = %v", byKind)
	}
}

func TestListeningGauge(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordListening(ctx, 1)
	m.RecordListening(ctx, 1)
	m.RecordListening(ctx, -1)

	if got := sumOf(t, collect(t, reader), "lumina.voice.listening"); got != 1 {
		t.Errorf("listening = %d, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordMove(ctx, MoveNext)
	m.RecordVoiceMatch(ctx)
	m.RecordSimplification(ctx)
	m.RecordRestart(ctx)
	m.RecordDenial(ctx)
	m.RecordUtterance(ctx)
	m.RecordListening(ctx, 1)
}

func TestDefaultMetricsSingleton(t *testing.T) {
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a == nil || a != b {
		t.Error("DefaultMetrics should return the same non-nil instance")
	}
}

func TestTotals(t *testing.T) {
	mp, reader := NewManualProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	ctx := context.Background()
	m.RecordMove(ctx, MoveNext)
	m.RecordMove(ctx, MoveNext)
	m.RecordMove(ctx, MovePrevious)
	m.RecordListening(ctx, 1)
	m.RecordListening(ctx, -1)

	totals, err := Totals(ctx, reader)
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if got := totals["lumina.navigator.moves"]; got != 3 {
		t.Errorf("moves = %d, want 3", got)
	}
	if got := totals["lumina.voice.listening"]; got != 0 {
		t.Errorf("listening = %d, want 0", got)
	}
	if _, ok := totals["lumina.speech.utterances"]; ok {
		t.Errorf("unrecorded counters should be absent")
	}
}
