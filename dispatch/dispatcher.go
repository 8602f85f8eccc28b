// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"fmt"

	"github.com/aqwarius2003/star-burger-dockerizations/foodcart"
	"github.com/aqwarius2003/star-burger-dockerizations/places"
	log "github.com/sirupsen/logrus"
)

// Store is the persistence the dispatcher needs.
type Store interface {
	ListRestaurants(ctx context.Context) ([]*foodcart.Restaurant, error)
	ListOpenOrders(ctx context.Context) ([]*foodcart.Order, error)
	UpdateOrderStatuses(ctx context.Context, status foodcart.OrderStatus, ids []int64) error
}

// Resolver turns addresses into coordinates, one lookup per distinct address.
type Resolver interface {
	ResolveAll(ctx context.Context, addresses []string) *places.Coordinates
}

// OrderRanking is the ranking computed for one order.
type OrderRanking struct {
	OrderID int64   `json:"order_id"`
	Ranking []Entry `json:"restaurants"`
}

// Dispatcher matches and ranks restaurants for batches of orders.
type Dispatcher struct {
	store    Store
	resolver Resolver
	policy   EmptyOrderPolicy
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(store Store, resolver Resolver, policy EmptyOrderPolicy) *Dispatcher {
	return &Dispatcher{store: store, resolver: resolver, policy: policy}
}

// Batch is the outcome of ranking the open orders.
type Batch struct {
	Orders      []*foodcart.Order
	Restaurants []*foodcart.Restaurant
	Rankings    []OrderRanking // aligned with Orders
}

// ProcessOpenOrders runs Process over every open order. The restaurants loaded
// for ranking are returned along with the orders.
func (d *Dispatcher) ProcessOpenOrders(ctx context.Context) (*Batch, error) {
	orders, err := d.store.ListOpenOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing open orders: %w", err)
	}

	restaurants, err := d.store.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing restaurants: %w", err)
	}

	rankings, err := d.process(ctx, orders, restaurants)
	if err != nil {
		return nil, err
	}

	return &Batch{Orders: orders, Restaurants: restaurants, Rankings: rankings}, nil
}

// Process ranks the candidate restaurants of every order, in input order.
//
// Every address of the batch (orders and restaurants) is resolved once before
// any distance is computed. Unresolved addresses never fail the batch: the
// restaurant is left out, or the order gets an empty ranking.
//
// Unprocessed orders with an assigned restaurant move to processing, both in
// orders and in the store, with a single write for the whole batch. Orders
// already in delivery keep their status even when a restaurant is assigned:
// the workflow only moves forward.
func (d *Dispatcher) Process(ctx context.Context, orders []*foodcart.Order) ([]OrderRanking, error) {
	restaurants, err := d.store.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing restaurants: %w", err)
	}

	return d.process(ctx, orders, restaurants)
}

func (d *Dispatcher) process(ctx context.Context, orders []*foodcart.Order, restaurants []*foodcart.Restaurant) ([]OrderRanking, error) {
	addresses := make([]string, 0, len(orders)+len(restaurants))
	for _, order := range orders {
		addresses = append(addresses, order.Address)
	}

	for _, r := range restaurants {
		addresses = append(addresses, r.Address)
	}

	coords := d.resolver.ResolveAll(ctx, addresses)
	unresolved := logUnresolvedRestaurants(restaurants, coords)
	matcher := NewMatcher(restaurants, d.policy)

	var promoted []int64

	rankings := make([]OrderRanking, 0, len(orders))

	for _, order := range orders {
		rankings = append(rankings, OrderRanking{
			OrderID: order.ID,
			Ranking: rankOrder(order, matcher, coords),
		})

		if order.RestaurantID != nil && order.Status == foodcart.StatusUnprocessed {
			promoted = append(promoted, order.ID)
		}
	}

	if len(promoted) > 0 {
		if err := d.store.UpdateOrderStatuses(ctx, foodcart.StatusProcessing, promoted); err != nil {
			return nil, fmt.Errorf("promoting %d orders: %w", len(promoted), err)
		}

		for _, order := range orders {
			if order.RestaurantID != nil && order.Status == foodcart.StatusUnprocessed {
				order.Status = foodcart.StatusProcessing
			}
		}
	}

	log.WithFields(log.Fields{
		"orders":     len(orders),
		"addresses":  coords.Metrics.Addresses,
		"cache_hits": coords.Metrics.CacheHits,
		"geocoded":   coords.Metrics.Geocoded,
		"failed":     coords.Metrics.Failed,
		"skipped":    coords.Metrics.Skipped,
		"excluded":   unresolved,
		"promoted":   len(promoted),
	}).Info("Ranked restaurants for orders")

	return rankings, nil
}

// logUnresolvedRestaurants reports, once per batch, the restaurants left out of
// every ranking, and returns how many there are.
func logUnresolvedRestaurants(restaurants []*foodcart.Restaurant, coords *places.Coordinates) int {
	unresolved := 0

	for _, r := range restaurants {
		if _, ok := coords.Get(r.Address); ok {
			continue
		}

		unresolved++

		log.WithFields(log.Fields{
			"restaurant_id": r.ID,
			"restaurant":    r.Name,
			"address":       r.Address,
		}).Info("Restaurant address unresolved, left out of rankings")
	}

	return unresolved
}

func rankOrder(order *foodcart.Order, matcher *Matcher, coords *places.Coordinates) []Entry {
	customer, ok := coords.Get(order.Address)
	if !ok {
		log.WithFields(log.Fields{
			"order_id": order.ID,
			"address":  order.Address,
		}).Info("Customer address unresolved, order gets an empty ranking")

		return []Entry{}
	}

	matched := matcher.Match(order)
	candidates := make([]Candidate, 0, len(matched))

	for _, r := range matched {
		point, _ := coords.Get(r.Address)
		candidates = append(candidates, Candidate{Restaurant: r, Point: point})
	}

	return Rank(customer, candidates)
}
