// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"

	"github.com/aqwarius2003/star-burger-dockerizations/spatial"
	log "github.com/sirupsen/logrus"
)

// ResolveMetrics counts what happened while resolving a batch of addresses.
type ResolveMetrics struct {
	Addresses int // distinct non-empty addresses
	CacheHits int
	Geocoded  int
	Failed    int
	Skipped   int // not sent after the provider refused the batch
}

// Merge adds other into m.
func (m *ResolveMetrics) Merge(other *ResolveMetrics) *ResolveMetrics {
	if other == nil {
		return m
	}

	m.Addresses += other.Addresses
	m.CacheHits += other.CacheHits
	m.Geocoded += other.Geocoded
	m.Failed += other.Failed
	m.Skipped += other.Skipped

	return m
}

// Coordinates holds the resolved points of a batch of addresses. Addresses
// that could not be resolved are simply missing.
type Coordinates struct {
	points  map[string]spatial.Point
	Metrics ResolveMetrics
}

// Get returns the point of address, if it was resolved.
func (c *Coordinates) Get(address string) (*spatial.Point, bool) {
	point, ok := c.points[NormalizeAddress(address)]
	if !ok {
		return nil, false
	}

	return &point, true
}

// Len returns the number of resolved addresses.
func (c *Coordinates) Len() int {
	return len(c.points)
}

// Resolver looks addresses up in a Cache first and falls back to a Geocoder,
// storing what the geocoder finds.
//
// An address seen for the first time is registered as pending before the
// geocoder is called. Geocoding failures never surface as errors: they are
// logged and the record stays pending, so the next lookup of the same address
// calls the geocoder again.
type Resolver struct {
	cache    Cache
	geocoder Geocoder
}

// NewResolver creates a resolver.
func NewResolver(cache Cache, geocoder Geocoder) *Resolver {
	return &Resolver{cache: cache, geocoder: geocoder}
}

// Cache returns the cache backing the resolver.
func (r *Resolver) Cache() Cache {
	return r.cache
}

// Resolve returns the coordinates of address.
func (r *Resolver) Resolve(ctx context.Context, address string) (spatial.Point, bool) {
	if NormalizeAddress(address) == "" {
		return spatial.Point{}, false
	}

	place, err := r.cache.Lookup(ctx, address)
	if err != nil {
		log.WithError(err).WithField("address", address).Warn("Coordinate cache lookup failed")
	}

	switch place.State() {
	case Resolved:
		log.WithField("address", address).Debug("Coordinates loaded from cache")

		return *place.Point, true
	case Absent:
		r.register(ctx, address)
	}

	point, err := r.geocode(ctx, address)

	return point, err == nil
}

// ResolveAll resolves every distinct address once. Cached records are read
// with a single LookupMany call; only absent or pending addresses reach the
// geocoder. Once the provider reports a rate limit or an exhausted quota the
// remaining addresses are skipped and stay pending.
func (r *Resolver) ResolveAll(ctx context.Context, addresses []string) *Coordinates {
	coords := &Coordinates{points: make(map[string]spatial.Point)}

	// first spelling of each key is the one sent to the geocoder
	var (
		keys     []string
		original = make(map[string]string)
	)

	for _, address := range addresses {
		key := NormalizeAddress(address)
		if key == "" {
			continue
		}

		if _, seen := original[key]; !seen {
			original[key] = address
			keys = append(keys, key)
		}
	}

	coords.Metrics.Addresses = len(keys)

	cached, err := r.cache.LookupMany(ctx, keys)
	if err != nil {
		log.WithError(err).Warnf("Coordinate cache lookup failed for %d addresses, geocoding all of them", len(keys))

		cached = nil
	}

	refused := false

	for _, key := range keys {
		place := cached[key]
		switch place.State() {
		case Resolved:
			coords.points[key] = *place.Point
			coords.Metrics.CacheHits++

			continue
		case Absent:
			r.register(ctx, original[key])
		}

		if refused {
			coords.Metrics.Skipped++

			continue
		}

		point, err := r.geocode(ctx, original[key])
		if err != nil {
			coords.Metrics.Failed++

			if IsRateLimitError(err) || IsQuotaExceededError(err) {
				refused = true

				log.WithError(err).Warn("Geocoder refused requests, skipping the rest of the batch")
			}

			continue
		}

		coords.points[key] = point
		coords.Metrics.Geocoded++
	}

	return coords
}

func (r *Resolver) register(ctx context.Context, address string) {
	if err := r.cache.Register(ctx, address); err != nil {
		log.WithError(err).WithField("address", address).Debug("Registering pending address failed")
	}
}

func (r *Resolver) geocode(ctx context.Context, address string) (spatial.Point, error) {
	logger := log.WithField("address", address)

	result, err := r.geocoder.Geocode(ctx, address)
	if err == nil && result == nil {
		err = notFound(address)
	}

	if err != nil {
		logger = logger.WithField("error_type", failureType(err))

		switch {
		case IsNotFoundError(err):
			logger.Warn("Geocoder has no coordinates for address")
		case IsTimeoutError(err):
			logger.WithError(err).Warn("Geocoder timed out")
		default:
			logger.WithError(err).Warn("Geocoding failed")
		}

		return spatial.Point{}, err
	}

	logger = logger.WithFields(log.Fields{
		"provider":     result.Provider,
		"confidence":   result.Confidence,
		"display_name": result.DisplayName,
	})
	if result.Confidence == confidenceLow {
		logger.Warn("Geocoder returned an approximate match")
	} else {
		logger.Debug("Address geocoded")
	}

	if err := r.cache.Store(ctx, address, result.Point); err != nil {
		logger.WithError(err).Warn("Storing coordinates failed")
	}

	return result.Point, nil
}

// failureType names the kind of a geocoding failure for the logs.
func failureType(err error) ErrorType {
	switch {
	case IsNotFoundError(err):
		return ErrorTypeNotFound
	case IsRateLimitError(err):
		return ErrorTypeRateLimit
	case IsQuotaExceededError(err):
		return ErrorTypeQuotaExceeded
	case IsTimeoutError(err):
		return ErrorTypeTimeout
	}

	t, _ := errorType(err)

	return t
}
