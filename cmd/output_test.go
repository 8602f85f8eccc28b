// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aqwarius2003/star-burger-dockerizations/dispatch"
	"github.com/aqwarius2003/star-burger-dockerizations/foodcart"
	"github.com/aqwarius2003/star-burger-dockerizations/places"
	"github.com/aqwarius2003/star-burger-dockerizations/spatial"
	"github.com/stretchr/testify/assert"
)

func TestPrintRankings(t *testing.T) {
	orders := []*foodcart.Order{
		{ID: 1, Address: "Москва, Красная площадь, 1", Status: foodcart.StatusUnprocessed},
		{ID: 2, Address: "Атлантида", Status: foodcart.StatusProcessing},
	}
	rankings := []dispatch.OrderRanking{
		{OrderID: 1, Ranking: []dispatch.Entry{
			{RestaurantName: "Star Burger Арбат", DistanceKm: 2.18},
			{RestaurantName: "Star Burger Сокол", DistanceKm: 7.91},
		}},
		{OrderID: 2, Ranking: []dispatch.Entry{}},
	}

	var out bytes.Buffer
	printRankings(&out, orders, rankings)

	text := out.String()
	assert.Contains(t, text, "Star Burger Арбат")
	assert.Contains(t, text, "2.18 km")
	assert.Contains(t, text, "7.91 km")
	assert.Contains(t, text, "no restaurant")
	assert.Contains(t, text, "Processing")
	assert.True(t, strings.HasSuffix(text, "2 open orders\n"))
	// header, separators and one line per ranked restaurant or unranked order
	assert.Equal(t, 8, strings.Count(text, "\n"))
}

func TestPrintPlaces(t *testing.T) {
	list := []*places.Place{
		{Address: "москва, арбат, 1", Point: &spatial.Point{Lat: 55.75, Lng: 37.61}, Cell: 0x8811aa4b49fffff},
		{Address: "москва, нигде"},
	}

	var out bytes.Buffer
	printPlaces(&out, list)

	text := out.String()
	assert.Contains(t, text, "55.750000, 37.610000")
	assert.Contains(t, text, "8811aa4b49fffff")
	assert.Contains(t, text, "resolved")
	assert.Contains(t, text, "pending")
	assert.Contains(t, text, "2 places, 1 resolved")
}
