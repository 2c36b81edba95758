package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ConversionRequest asks for one raw coordinate string to be converted.
// ID is echoed back so callers can correlate results.
type ConversionRequest struct {
	ID    string `json:"id,omitempty"`
	Input string `json:"input"`
}

// ConversionError is the serialized form of a failed conversion.
type ConversionError struct {
	Kind    string `json:"kind"` // format, numeric, range, hemisphere, request
	Message string `json:"message"`
}

// Place is the reverse-geocoding enrichment of a converted coordinate.
type Place struct {
	Name       string  `json:"name,omitempty"`
	Address    string  `json:"address,omitempty"`
	Confidence float64 `json:"confidence,omitempty"` // 0.0–1.0 provider relevance
	Source     string  `json:"source"`               // "reverse" or "failed"
}

// ConversionResult carries either a coordinate or an error, never both.
type ConversionResult struct {
	ID          string           `json:"id,omitempty"`
	Input       string           `json:"input"`
	Coordinate  *Coordinate      `json:"coordinate,omitempty"`
	Error       *ConversionError `json:"error,omitempty"`
	Place       *Place           `json:"place,omitempty"`
	ProcessedAt time.Time        `json:"processed_at"`
}

// Outcome is "success" or the error kind of a failed conversion.
func (r ConversionResult) Outcome() string {
	if r.Error != nil {
		return r.Error.Kind
	}
	return "success"
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
