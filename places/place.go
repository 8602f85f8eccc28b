// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

// Package places keeps the coordinates of the addresses the kitchen deals
// with: a persistent coordinate cache, the geocoding providers behind it and
// the resolver that glues both together.
package places

import (
	"context"
	"strings"
	"time"

	"github.com/aqwarius2003/star-burger-dockerizations/spatial"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// State tells how much the cache knows about an address.
type State int

const (
	// Absent means the address was never looked up.
	Absent State = iota
	// Pending means the address is known but its coordinates are not.
	Pending
	// Resolved means both coordinates are known.
	Resolved
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	default:
		return "absent"
	}
}

// Place is a cached address with its coordinates, if known.
type Place struct {
	Address   string         `json:"address"`
	Point     *spatial.Point `json:"point,omitempty"`
	Cell      int64          `json:"h3_cell,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// State returns the lookup state of the place. A nil place is Absent.
func (p *Place) State() State {
	if p == nil {
		return Absent
	}

	if p.Point == nil {
		return Pending
	}

	return Resolved
}

// Cache maps normalized addresses to coordinates.
//
// Implementations must accept raw addresses and normalize them with
// NormalizeAddress. Lookups of unknown addresses return a nil *Place and a
// nil error.
type Cache interface {
	// Lookup returns the cached place for address.
	Lookup(ctx context.Context, address string) (*Place, error)

	// LookupMany returns the known places among addresses, keyed by normalized address.
	LookupMany(ctx context.Context, addresses []string) (map[string]*Place, error)

	// Store upserts the coordinates of address.
	Store(ctx context.Context, address string, point spatial.Point) error

	// Register creates a pending record for address unless one already exists.
	Register(ctx context.Context, address string) error
}

// Lister is implemented by caches that can enumerate their records.
type Lister interface {
	// List returns every cached place ordered by address.
	List(ctx context.Context) ([]*Place, error)
}

var (
	_ Lister = (*MemoryCache)(nil)
	_ Lister = (*RedisCache)(nil)
	_ Lister = (PlaceRepository)(nil)
)

// NormalizeAddress returns the cache key for an address: unicode NFC,
// case folded, with runs of whitespace collapsed into a single space.
func NormalizeAddress(address string) string {
	address = strings.Join(strings.Fields(address), " ")

	// a Caser keeps state, so it can't be shared between goroutines
	return cases.Fold().String(norm.NFC.String(address))
}

func newPlace(address string, point *spatial.Point, now time.Time) (*Place, error) {
	place := &Place{Address: NormalizeAddress(address), Point: point, UpdatedAt: now}

	if point != nil {
		cell, err := point.Cell()
		if err != nil {
			return nil, err
		}

		place.Cell = cell
	}

	return place, nil
}
