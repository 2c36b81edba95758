package domain

import (
	"errors"
	"strings"
)

// Error kinds reported by Convert. Match them with errors.Is.
var (
	ErrFormat     = errors.New("malformed coordinate")
	ErrNumeric    = errors.New("invalid number")
	ErrRange      = errors.New("value out of range")
	ErrHemisphere = errors.New("invalid hemisphere")
)

// Error kind labels used in results, metrics, and API responses.
const (
	KindFormat     = "format"
	KindNumeric    = "numeric"
	KindRange      = "range"
	KindHemisphere = "hemisphere"
	KindRequest    = "request"
)

// ParseError describes why a raw coordinate string could not be converted.
type ParseError struct {
	Input  string
	Kind   error // one of ErrFormat, ErrNumeric, ErrRange, ErrHemisphere
	Detail string
	Err    error // underlying cause, e.g. a strconv error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ErrorKind maps an error returned by Convert to its label. A nil error has
// no kind; other errors that are not conversion errors map to KindRequest.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFormat):
		return KindFormat
	case errors.Is(err, ErrNumeric):
		return KindNumeric
	case errors.Is(err, ErrRange):
		return KindRange
	case errors.Is(err, ErrHemisphere):
		return KindHemisphere
	default:
		return KindRequest
	}
}

func newParseError(input string, kind error, detail string, cause error) *ParseError {
	return &ParseError{Input: input, Kind: kind, Detail: detail, Err: cause}
}
