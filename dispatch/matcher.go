// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

// Package dispatch decides which restaurants can cook an order and ranks them
// by distance to the customer.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/aqwarius2003/star-burger-dockerizations/foodcart"
	log "github.com/sirupsen/logrus"
)

// EmptyOrderPolicy decides what an order without products matches.
type EmptyOrderPolicy int

const (
	// MatchAll treats an empty order as fulfillable by every restaurant.
	MatchAll EmptyOrderPolicy = iota
	// MatchNone gives an empty order no candidates.
	MatchNone
)

func (p EmptyOrderPolicy) String() string {
	switch p {
	case MatchAll:
		return "all"
	case MatchNone:
		return "none"
	default:
		return fmt.Sprintf("EmptyOrderPolicy(%d)", int(p))
	}
}

// ParseEmptyOrderPolicy parses "all" or "none".
func ParseEmptyOrderPolicy(s string) (EmptyOrderPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return MatchAll, nil
	case "none":
		return MatchNone, nil
	default:
		return MatchAll, fmt.Errorf("unknown empty order policy %q (want all or none)", s)
	}
}

// Matcher finds the restaurants able to fulfill an order.
type Matcher struct {
	restaurants []*foodcart.Restaurant
	byID        map[int64]*foodcart.Restaurant
	policy      EmptyOrderPolicy
}

// NewMatcher creates a matcher over restaurants. Results keep the order of
// restaurants.
func NewMatcher(restaurants []*foodcart.Restaurant, policy EmptyOrderPolicy) *Matcher {
	byID := make(map[int64]*foodcart.Restaurant, len(restaurants))
	for _, r := range restaurants {
		byID[r.ID] = r
	}

	return &Matcher{restaurants: restaurants, byID: byID, policy: policy}
}

// Match returns the candidate restaurants of order.
//
// A manually assigned restaurant overrides menu availability. Otherwise a
// restaurant matches when every distinct product of the order is available
// on its menu.
func (m *Matcher) Match(order *foodcart.Order) []*foodcart.Restaurant {
	if order.RestaurantID != nil {
		if r, ok := m.byID[*order.RestaurantID]; ok {
			return []*foodcart.Restaurant{r}
		}

		log.WithFields(log.Fields{
			"order_id":   order.ID,
			"restaurant": *order.RestaurantID,
		}).Warn("Order is assigned to an unknown restaurant")

		return []*foodcart.Restaurant{}
	}

	return m.MatchProducts(order.ProductIDs())
}

// MatchProducts returns the restaurants that have every product available.
func (m *Matcher) MatchProducts(productIDs []int64) []*foodcart.Restaurant {
	if len(productIDs) == 0 {
		if m.policy == MatchNone {
			return []*foodcart.Restaurant{}
		}

		return append([]*foodcart.Restaurant(nil), m.restaurants...)
	}

	matched := make([]*foodcart.Restaurant, 0, len(m.restaurants))

	for _, r := range m.restaurants {
		if hasAll(r, productIDs) {
			matched = append(matched, r)
		}
	}

	return matched
}

func hasAll(r *foodcart.Restaurant, productIDs []int64) bool {
	available := make(map[int64]bool, len(r.Menu))
	for _, item := range r.Menu {
		if item.Available {
			available[item.ProductID] = true
		}
	}

	for _, id := range productIDs {
		if !available[id] {
			return false
		}
	}

	return true
}
