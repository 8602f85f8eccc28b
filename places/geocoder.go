// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"

	"github.com/aqwarius2003/star-burger-dockerizations/spatial"
)

// Match confidence reported by the providers.
const (
	confidenceHigh   = "high"
	confidenceMedium = "medium"
	confidenceLow    = "low"
)

// GeocodingResult represents a geocoding result from any provider.
type GeocodingResult struct {
	Point       spatial.Point
	Confidence  string // confidenceHigh, confidenceMedium or confidenceLow
	Provider    string
	DisplayName string
}

// Geocoder interface for different geocoding providers.
//
// Implementations return a *GeocodingError of type ErrorTypeNotFound when the
// provider has no result for the address.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*GeocodingResult, error)
}
