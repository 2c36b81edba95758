package pipeline

import (
	"context"

	"github.com/couchcryptid/dms-converter-service/internal/domain"
	"github.com/couchcryptid/dms-converter-service/internal/service"
)

// ConversionTransformer implements Transformer by decoding the request,
// converting it, and serializing the result.
type ConversionTransformer struct {
	converter *service.Converter
}

// NewTransformer creates a ConversionTransformer backed by converter.
func NewTransformer(converter *service.Converter) *ConversionTransformer {
	return &ConversionTransformer{converter: converter}
}

// Transform returns an error only for messages that cannot be decoded.
// Coordinates that fail to parse still produce a result carrying the error.
func (t *ConversionTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	result := t.converter.Convert(ctx, service.SurfaceKafka, req)
	return domain.SerializeResult(result)
}
