package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding attaches the nearest place to a successful result.
// A nil geocoder, a failed conversion, or an empty lookup leaves the result
// untouched; a lookup error marks the place as "failed" and keeps the
// converted coordinate.
func EnrichWithGeocoding(ctx context.Context, result ConversionResult, geocoder Geocoder, logger *slog.Logger) ConversionResult {
	if geocoder == nil || result.Coordinate == nil {
		return result
	}

	lat, lon := result.Coordinate.Lat, result.Coordinate.Lon
	found, err := geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"request_id", result.ID,
			"lat", lat,
			"lon", lon,
			"error", err,
		)
		result.Place = &Place{Source: "failed"}
		return result
	}
	if found.FormattedAddress == "" {
		return result
	}

	result.Place = &Place{
		Name:       found.PlaceName,
		Address:    found.FormattedAddress,
		Confidence: found.Confidence,
		Source:     "reverse",
	}
	return result
}
