// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"sort"

	"github.com/aqwarius2003/star-burger-dockerizations/foodcart"
	"github.com/aqwarius2003/star-burger-dockerizations/spatial"
	log "github.com/sirupsen/logrus"
)

// Candidate is a matched restaurant with its coordinates, nil when unresolved.
type Candidate struct {
	Restaurant *foodcart.Restaurant
	Point      *spatial.Point
}

// Entry is a line of a ranking.
type Entry struct {
	RestaurantID   int64   `json:"restaurant_id"`
	RestaurantName string  `json:"name"`
	DistanceKm     float64 `json:"distance"`
}

// Rank sorts candidates by great-circle distance to customer, closest first.
// Candidates without coordinates are left out. Equal distances keep the
// candidate order. A nil customer yields an empty ranking.
func Rank(customer *spatial.Point, candidates []Candidate) []Entry {
	if customer == nil {
		return []Entry{}
	}

	ranking := make([]Entry, 0, len(candidates))

	for _, c := range candidates {
		if c.Point == nil {
			log.WithField("restaurant", c.Restaurant.Name).Debug("Restaurant has no coordinates, left out of the ranking")

			continue
		}

		ranking = append(ranking, Entry{
			RestaurantID:   c.Restaurant.ID,
			RestaurantName: c.Restaurant.Name,
			DistanceKm:     customer.DistanceKm(c.Point),
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].DistanceKm < ranking[j].DistanceKm
	})

	return ranking
}
