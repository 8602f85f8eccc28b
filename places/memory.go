// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aqwarius2003/star-burger-dockerizations/spatial"
)

// MemoryCache is a process-local Cache. It is safe for concurrent use.
type MemoryCache struct {
	mu     sync.Mutex
	places map[string]*Place
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{places: make(map[string]*Place)}
}

func (c *MemoryCache) Lookup(_ context.Context, address string) (*Place, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.get(NormalizeAddress(address)), nil
}

// get returns a copy so callers can't mutate the cached record.
func (c *MemoryCache) get(key string) *Place {
	place, ok := c.places[key]
	if !ok {
		return nil
	}

	cp := *place

	if place.Point != nil {
		point := *place.Point
		cp.Point = &point
	}

	return &cp
}

func (c *MemoryCache) LookupMany(_ context.Context, addresses []string) (map[string]*Place, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]*Place, len(addresses))

	for _, address := range addresses {
		key := NormalizeAddress(address)
		if place := c.get(key); place != nil {
			result[key] = place
		}
	}

	return result, nil
}

func (c *MemoryCache) Store(_ context.Context, address string, point spatial.Point) error {
	place, err := newPlace(address, &point, time.Now())
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.places[place.Address] = place

	return nil
}

func (c *MemoryCache) Register(_ context.Context, address string) error {
	key := NormalizeAddress(address)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.places[key]; !ok {
		c.places[key] = &Place{Address: key, UpdatedAt: time.Now()}
	}

	return nil
}

// List returns every cached place ordered by address.
func (c *MemoryCache) List(_ context.Context) ([]*Place, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]*Place, 0, len(c.places))
	for key := range c.places {
		result = append(result, c.get(key))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})

	return result, nil
}
