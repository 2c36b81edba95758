package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyRequest is returned when a payload carries no coordinate text.
var ErrEmptyRequest = errors.New("request has no input")

// DecodeRequest reads a conversion request from a message payload. A JSON
// object is decoded as {"id", "input"}; anything else is taken verbatim as
// the input string.
func DecodeRequest(data []byte) (ConversionRequest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ConversionRequest{}, ErrEmptyRequest
	}

	if trimmed[0] != '{' {
		return ConversionRequest{Input: string(trimmed)}, nil
	}

	var req ConversionRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return ConversionRequest{}, fmt.Errorf("decode request: %w", err)
	}
	if strings.TrimSpace(req.Input) == "" {
		return ConversionRequest{}, ErrEmptyRequest
	}
	return req, nil
}

// ParseRawEvent decodes a source-topic message into a ConversionRequest.
// Requests without an ID take the message key, or a deterministic hash of
// the input when the key is empty too.
func ParseRawEvent(raw RawEvent) (ConversionRequest, error) {
	req, err := DecodeRequest(raw.Value)
	if err != nil {
		return ConversionRequest{}, fmt.Errorf("parse raw event: %w", err)
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	return WithID(req), nil
}

// WithID fills in a deterministic ID when the request has none.
func WithID(req ConversionRequest) ConversionRequest {
	if req.ID == "" {
		req.ID = generateID(req.Input)
	}
	return req
}

// ResolveRequest converts the request input and stamps the result.
// Conversion failures are reported in the result, not as an error.
func ResolveRequest(req ConversionRequest) ConversionResult {
	result := ConversionResult{ID: req.ID, Input: req.Input}

	coord, err := Convert(req.Input)
	if err != nil {
		result.Error = &ConversionError{Kind: ErrorKind(err), Message: err.Error()}
	} else {
		result.Coordinate = &coord
	}

	result.ProcessedAt = clock.Now()
	return result
}

// RequestFailure builds the result returned for a payload that could not be
// decoded into a request at all.
func RequestFailure(err error) ConversionResult {
	return ConversionResult{
		Error:       &ConversionError{Kind: KindRequest, Message: err.Error()},
		ProcessedAt: clock.Now(),
	}
}

// SerializeResult marshals a result into an OutputEvent keyed by request ID.
func SerializeResult(result ConversionResult) (OutputEvent, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize conversion result: %w", err)
	}
	return OutputEvent{
		Key:   []byte(result.ID),
		Value: data,
		Headers: map[string]string{
			"outcome":      result.Outcome(),
			"processed_at": result.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}

// generateID hashes the trimmed input so replays of the same text produce
// the same key downstream.
func generateID(input string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(input)))
	return "dms-" + hex.EncodeToString(hash[:8])
}
