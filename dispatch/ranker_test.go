// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"testing"

	"github.com/aqwarius2003/star-burger-dockerizations/foodcart"
	"github.com/aqwarius2003/star-burger-dockerizations/spatial"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var (
	customer = spatial.Point{Lat: 55.75, Lng: 37.61}
	near     = spatial.Point{Lat: 55.76, Lng: 37.64} // 2.18 km
	middle   = spatial.Point{Lat: 55.80, Lng: 37.70} // 7.91 km
	far      = spatial.Point{Lat: 55.70, Lng: 37.50} // 8.85 km
)

func candidate(id int64, name string, p *spatial.Point) Candidate {
	return Candidate{Restaurant: &foodcart.Restaurant{ID: id, Name: name}, Point: p}
}

func TestRankSortsByDistance(t *testing.T) {
	got := Rank(&customer, []Candidate{
		candidate(1, "Far", &far),
		candidate(2, "Near", &near),
		candidate(3, "Middle", &middle),
	})

	want := []Entry{
		{RestaurantID: 2, RestaurantName: "Near", DistanceKm: 2.18},
		{RestaurantID: 3, RestaurantName: "Middle", DistanceKm: 7.91},
		{RestaurantID: 1, RestaurantName: "Far", DistanceKm: 8.85},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}
}

func TestRankTiesKeepCandidateOrder(t *testing.T) {
	twin := near

	got := Rank(&customer, []Candidate{
		candidate(1, "First", &near),
		candidate(2, "Closer", &customer),
		candidate(3, "Second", &twin),
	})

	want := []Entry{
		{RestaurantID: 2, RestaurantName: "Closer", DistanceKm: 0},
		{RestaurantID: 1, RestaurantName: "First", DistanceKm: 2.18},
		{RestaurantID: 3, RestaurantName: "Second", DistanceKm: 2.18},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}
}

func TestRankLeavesOutUnresolvedRestaurants(t *testing.T) {
	got := Rank(&customer, []Candidate{
		candidate(1, "Lost", nil),
		candidate(2, "Near", &near),
	})

	want := []Entry{{RestaurantID: 2, RestaurantName: "Near", DistanceKm: 2.18}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}
}

func TestRankWithoutCustomerIsEmpty(t *testing.T) {
	got := Rank(nil, []Candidate{candidate(1, "Near", &near)})
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, Rank(&customer, nil))
}

func TestRankIsDeterministic(t *testing.T) {
	candidates := []Candidate{
		candidate(1, "Far", &far),
		candidate(2, "Near", &near),
		candidate(3, "Near too", &near),
	}

	first := Rank(&customer, candidates)
	for range 10 {
		if diff := cmp.Diff(first, Rank(&customer, candidates)); diff != "" {
			t.Fatalf("Rank() changed between runs (-first +now):\n%s", diff)
		}
	}
}
