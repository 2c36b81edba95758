package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/dms-converter-service/internal/domain"
	"github.com/couchcryptid/dms-converter-service/internal/observability"
	"github.com/couchcryptid/dms-converter-service/internal/pipeline"
	"github.com/couchcryptid/dms-converter-service/internal/service"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	events []domain.RawEvent
	index  atomic.Int64
}

func (m *mockExtractor) Extract(ctx context.Context) (domain.RawEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.events) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return domain.RawEvent{}, ctx.Err()
	}
	return m.events[i], nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if m.err != nil {
		return domain.OutputEvent{}, m.err
	}
	return domain.OutputEvent{Key: raw.Key, Value: raw.Value}, nil
}

type mockLoader struct {
	mu       sync.Mutex
	loaded   []domain.OutputEvent
	failures int // number of initial Load calls that fail
}

func (m *mockLoader) Load(_ context.Context, event domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("broker unavailable")
	}
	m.loaded = append(m.loaded, event)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raw := makeRawEvent("req-1", `35°45'30"N, 82°18'45"W`)

	ext := &mockExtractor{events: []domain.RawEvent{raw}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, ldr.loaded, 1)
	assert.Equal(t, raw.Value, ldr.loaded[0].Value)
	assert.True(t, p.Ready())
	require.NoError(t, p.CheckReadiness(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MessagesConsumed))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MessagesProduced))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PipelineRunning))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no events, will block
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_TransformError(t *testing.T) {
	commitCalled := false
	raw := makeRawEvent("req-2", "garbage")
	raw.Commit = func(_ context.Context) error {
		commitCalled = true
		return nil
	}

	ext := &mockExtractor{events: []domain.RawEvent{raw}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{err: errors.New("bad data")}, ldr, discardLogger(), metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
	assert.False(t, p.Ready())
	assert.True(t, commitCalled, "poison messages are committed so they are not redelivered")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DecodeErrors))
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	var commitCalled atomic.Bool

	raw := makeRawEvent("req-5", "35 N, 82 W")
	raw.Topic = "dms-conversion-requests"
	raw.Commit = func(_ context.Context) error {
		commitCalled.Store(true)
		return nil
	}

	ext := &mockExtractor{events: []domain.RawEvent{raw}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.True(t, commitCalled.Load())
}

func TestPipeline_Run_RetriesLoad(t *testing.T) {
	raw := makeRawEvent("req-6", "35 N, 82 W")

	ext := &mockExtractor{events: []domain.RawEvent{raw}}
	ldr := &mockLoader{failures: 1}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		assert.Eventually(t, p.Ready, time.Second, 10*time.Millisecond)
		cancel()
	}()

	require.NoError(t, p.Run(ctx))
	assert.Len(t, ldr.loaded, 1)
}

func TestPipeline_Run_StopsWhileLoadBacksOff(t *testing.T) {
	raw := makeRawEvent("req-7", "35 N, 82 W")
	var commitCalled atomic.Bool
	raw.Commit = func(_ context.Context) error {
		commitCalled.Store(true)
		return nil
	}

	ext := &mockExtractor{events: []domain.RawEvent{raw}}
	ldr := &mockLoader{failures: 1000}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, p.Run(ctx))
	assert.Less(t, time.Since(start), 2*time.Second, "backoff sleep should end on cancellation")
	assert.Empty(t, ldr.loaded)
	assert.False(t, commitCalled.Load(), "offset must not be committed for an unwritten result")
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.MessagesProduced))
}

func TestConversionTransformer_Transform(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	converter := service.NewConverter(nil, discardLogger(), observability.NewMetricsForTesting())
	tfm := pipeline.NewTransformer(converter)

	out, err := tfm.Transform(context.Background(), makeRawEvent("req-3", `35°45'N 82°18'W`))
	require.NoError(t, err)
	assert.Equal(t, []byte("req-3"), out.Key)
	assert.Equal(t, "success", out.Headers["outcome"])
	assert.Equal(t, "2024-04-26T15:10:00Z", out.Headers["processed_at"])

	var result domain.ConversionResult
	require.NoError(t, json.Unmarshal(out.Value, &result))

	type summary struct {
		ID  string
		Lat float64
		Lon float64
	}
	require.NotNil(t, result.Coordinate)
	want := summary{ID: "req-3", Lat: 35.75, Lon: -82.3}
	got := summary{ID: result.ID, Lat: result.Coordinate.Lat, Lon: result.Coordinate.Lon}
	if diff := cmp.Diff(want, got, cmpFloat()); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestConversionTransformer_ParseFailureIsPublished(t *testing.T) {
	converter := service.NewConverter(nil, discardLogger(), observability.NewMetricsForTesting())
	tfm := pipeline.NewTransformer(converter)

	out, err := tfm.Transform(context.Background(), makeRawEvent("req-4", `35 N, 35 N`))
	require.NoError(t, err)
	assert.Equal(t, domain.KindHemisphere, out.Headers["outcome"])
	assert.Contains(t, string(out.Value), `"kind":"hemisphere"`)
}

func TestConversionTransformer_DecodeError(t *testing.T) {
	converter := service.NewConverter(nil, discardLogger(), observability.NewMetricsForTesting())
	tfm := pipeline.NewTransformer(converter)

	_, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte("{not json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse raw event")
}

// --- helpers ---

func makeRawEvent(id, input string) domain.RawEvent {
	data, _ := json.Marshal(domain.ConversionRequest{ID: id, Input: input})
	return domain.RawEvent{
		Key:   []byte(id),
		Value: data,
	}
}

func cmpFloat() cmp.Option {
	return cmp.Comparer(func(a, b float64) bool {
		d := a - b
		return d < 1e-9 && d > -1e-9
	})
}
