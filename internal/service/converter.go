// Package service runs coordinate conversions on behalf of the transport
// adapters (HTTP, Kafka, NATS) and records their metrics.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/dms-converter-service/internal/domain"
	"github.com/couchcryptid/dms-converter-service/internal/observability"
)

// Surface names used as the "surface" metric label.
const (
	SurfaceHTTP  = "http"
	SurfaceKafka = "kafka"
	SurfaceNATS  = "nats"
)

// Converter resolves requests and optionally enriches them with a place name.
// It is safe for concurrent use.
type Converter struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewConverter creates a Converter. Pass a nil geocoder to disable
// reverse-geocoding enrichment.
func NewConverter(geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Converter {
	return &Converter{
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
}

// Convert resolves one request. Parse failures are reported in the result.
func (c *Converter) Convert(ctx context.Context, surface string, req domain.ConversionRequest) domain.ConversionResult {
	start := time.Now()

	result := domain.ResolveRequest(domain.WithID(req))
	result = domain.EnrichWithGeocoding(ctx, result, c.geocoder, c.logger)

	if result.Error != nil {
		c.logger.Debug("conversion rejected",
			"surface", surface,
			"request_id", result.ID,
			"kind", result.Error.Kind,
			"error", result.Error.Message,
		)
	}

	c.metrics.Conversions.WithLabelValues(surface, result.Outcome()).Inc()
	c.metrics.ConversionDuration.WithLabelValues(surface).Observe(time.Since(start).Seconds())
	return result
}

// Reject records a request that could not be decoded and returns the
// failure result for it.
func (c *Converter) Reject(surface string, err error) domain.ConversionResult {
	c.metrics.Conversions.WithLabelValues(surface, domain.KindRequest).Inc()
	return domain.RequestFailure(err)
}
