// Package domain converts Degrees-Minutes-Seconds (DMS) coordinate text into
// WGS-84 decimal degrees and models the requests and results that flow
// through the service.
//
// # Accepted Input
//
// A coordinate is two components, each ending in a hemisphere letter:
//
//	35°45'30"N, 82°18'45"W
//	35 45 30 N, 82 18 45 W
//	35°45′30″N 82°18′45″W
//	35°45'N 82°18'W          seconds omitted
//	40-44-55N 73-59-11W      dash-separated fields
//	82°18'45"W, 35°45'30"N   longitude first
//
// Each component has one to three numeric fields (degrees, minutes,
// seconds). Missing minutes or seconds are zero. Fields may be separated by
// whitespace, by the glyphs ° º ′ ' ’ ` ″ " ”, or by a dash between digits.
// Components may be separated by whitespace, a comma, a semicolon, or a
// slash. Hemisphere letters are case-insensitive.
//
// # Conversion
//
//	decimal = degrees + minutes/60 + seconds/3600
//
// S and W values are negated. The N/S component becomes the latitude and the
// E/W component the longitude, whatever order they appear in.
//
// # Validation
//
// Degrees must be non-negative, minutes and seconds in [0, 60), latitude at
// most 90 and longitude at most 180 in absolute value. The two components
// must be one N/S and one E/W. Failures are [ParseError] values whose kind
// is one of [ErrFormat], [ErrNumeric], [ErrRange], or [ErrHemisphere].
//
// # Request IDs
//
// Requests without an ID get a deterministic one derived from a SHA-256 hash
// of the trimmed input, so replayed messages keep the same sink key. See
// [WithID].
package domain
