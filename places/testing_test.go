// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"
	"errors"
	"sync"

	"github.com/aqwarius2003/star-burger-dockerizations/spatial"
)

// fakeGeocoder answers from a fixed table and counts calls per address.
type fakeGeocoder struct {
	mu     sync.Mutex
	points map[string]spatial.Point
	errs   map[string]error
	calls  map[string]int
}

func newFakeGeocoder(points map[string]spatial.Point) *fakeGeocoder {
	return &fakeGeocoder{points: points, errs: map[string]error{}, calls: map[string]int{}}
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (*GeocodingResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls[address]++

	if err, ok := g.errs[address]; ok {
		return nil, err
	}

	point, ok := g.points[address]
	if !ok {
		return nil, notFound(address)
	}

	return &GeocodingResult{Point: point, Provider: "fake", Confidence: "high"}, nil
}

func (g *fakeGeocoder) totalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	total := 0
	for _, n := range g.calls {
		total += n
	}

	return total
}

// failingCache fails every read and write.
type failingCache struct{}

var errCacheDown = errors.New("cache down")

func (failingCache) Lookup(context.Context, string) (*Place, error) { return nil, errCacheDown }
func (failingCache) LookupMany(context.Context, []string) (map[string]*Place, error) {
	return nil, errCacheDown
}
func (failingCache) Store(context.Context, string, spatial.Point) error { return errCacheDown }
func (failingCache) Register(context.Context, string) error             { return errCacheDown }

// geocoderFunc adapts a function to the Geocoder interface.
type geocoderFunc func(ctx context.Context, address string) (*GeocodingResult, error)

func (f geocoderFunc) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	return f(ctx, address)
}
