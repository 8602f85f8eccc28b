// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/aqwarius2003/star-burger-dockerizations/foodcart"
	"github.com/aqwarius2003/star-burger-dockerizations/places"
	"github.com/aqwarius2003/star-burger-dockerizations/spatial"
)

const (
	productA int64 = 1
	productB int64 = 2
)

func restaurant(id int64, name, address string, menu map[int64]bool) *foodcart.Restaurant {
	r := &foodcart.Restaurant{ID: id, Name: name, Address: address}
	for productID, available := range menu {
		r.Menu = append(r.Menu, foodcart.MenuItem{RestaurantID: id, ProductID: productID, Available: available})
	}

	return r
}

func order(id int64, address string, productIDs ...int64) *foodcart.Order {
	o := &foodcart.Order{ID: id, Address: address, Status: foodcart.StatusUnprocessed}
	for _, productID := range productIDs {
		o.Items = append(o.Items, foodcart.OrderItem{OrderID: id, ProductID: productID, Quantity: 1})
	}

	return o
}

type statusUpdate struct {
	status foodcart.OrderStatus
	ids    []int64
}

// fakeStore keeps orders in memory and records status writes.
type fakeStore struct {
	restaurants []*foodcart.Restaurant
	orders      []*foodcart.Order
	updates     []statusUpdate
	listings    int // ListRestaurants calls
	listErr     error
	updateErr   error
}

func (s *fakeStore) ListRestaurants(context.Context) ([]*foodcart.Restaurant, error) {
	s.listings++

	if s.listErr != nil {
		return nil, s.listErr
	}

	return s.restaurants, nil
}

func (s *fakeStore) ListOpenOrders(context.Context) ([]*foodcart.Order, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}

	var open []*foodcart.Order

	for _, o := range s.orders {
		if o.Status.Open() {
			cp := *o
			open = append(open, &cp)
		}
	}

	return open, nil
}

func (s *fakeStore) UpdateOrderStatuses(_ context.Context, status foodcart.OrderStatus, ids []int64) error {
	if s.updateErr != nil {
		return s.updateErr
	}

	s.updates = append(s.updates, statusUpdate{status: status, ids: slices.Clone(ids)})

	for _, o := range s.orders {
		if slices.Contains(ids, o.ID) {
			o.Status = status
		}
	}

	return nil
}

// fakeGeocoder answers from a fixed table and counts calls.
type fakeGeocoder struct {
	mu     sync.Mutex
	points map[string]spatial.Point
	calls  int
}

var errNoResult = errors.New("no result")

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (*places.GeocodingResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++

	point, ok := g.points[address]
	if !ok {
		return nil, errNoResult
	}

	return &places.GeocodingResult{Point: point, Provider: "fake"}, nil
}
