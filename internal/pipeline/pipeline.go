package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/dms-converter-service/internal/domain"
	"github.com/couchcryptid/dms-converter-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// Extractor reads the next raw request message from the source.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawEvent, error)
}

// Transformer converts a raw request message into a result message.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// Loader writes a result message to the destination.
type Loader interface {
	Load(ctx context.Context, event domain.OutputEvent) error
}

// Pipeline orchestrates the extract-transform-load loop, one message at a time.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, l Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
	}
}

// Ready reports whether at least one message has been loaded.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// CheckReadiness returns nil if the pipeline has processed at least one message,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any messages yet")
	}
	return nil
}

// Run executes the ETL loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started")
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processOne(ctx, &backoff, maxBackoff) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// processOne runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processOne(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	raw, err := p.extractor.Extract(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}
	p.metrics.MessagesConsumed.Inc()
	*backoff = 200 * time.Millisecond

	out, err := p.transformer.Transform(ctx, raw)
	if err != nil {
		p.logger.Warn("transform failed, skipping message",
			"error", err,
			"topic", raw.Topic,
			"partition", raw.Partition,
			"offset", raw.Offset,
		)
		p.metrics.DecodeErrors.Inc()
		p.commitOffset(ctx, raw)
		return true
	}

	// Retry the load until it succeeds so the offset is never committed for
	// an unwritten result.
	for {
		err := p.loader.Load(ctx, out)
		if err == nil {
			break
		}
		p.logger.Error("load failed", "error", err, "key", string(out.Key))
		if !p.backoffOrStop(ctx, backoff, maxBackoff) {
			return false
		}
	}

	p.metrics.MessagesProduced.Inc()
	p.commitOffset(ctx, raw)
	p.ready.Store(true)
	return true
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
