// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"testing"

	"github.com/aqwarius2003/star-burger-dockerizations/foodcart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(restaurants []*foodcart.Restaurant) []string {
	result := make([]string, 0, len(restaurants))
	for _, r := range restaurants {
		result = append(result, r.Name)
	}

	return result
}

func TestMatchRequiresEveryProductAvailable(t *testing.T) {
	r1 := restaurant(1, "R1", "r1", map[int64]bool{productA: true, productB: false})
	r2 := restaurant(2, "R2", "r2", map[int64]bool{productA: true, productB: true})
	r3 := restaurant(3, "R3", "r3", map[int64]bool{productA: true})

	m := NewMatcher([]*foodcart.Restaurant{r1, r2, r3}, MatchAll)

	assert.Equal(t, []string{"R2"}, names(m.Match(order(1, "x", productA, productB))))
	assert.Equal(t, []string{"R1", "R2", "R3"}, names(m.Match(order(2, "x", productA))))
	// repeated lines count once
	assert.Equal(t, []string{"R2"}, names(m.Match(order(3, "x", productB, productB))))
	assert.Empty(t, m.Match(order(4, "x", 99)))
}

func TestMatchEmptyOrder(t *testing.T) {
	restaurants := []*foodcart.Restaurant{
		restaurant(1, "R1", "r1", nil),
		restaurant(2, "R2", "r2", map[int64]bool{productA: false}),
	}

	all := NewMatcher(restaurants, MatchAll).Match(order(1, "x"))
	assert.Equal(t, []string{"R1", "R2"}, names(all))

	none := NewMatcher(restaurants, MatchNone).Match(order(1, "x"))
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMatchAssignedRestaurantOverridesMenu(t *testing.T) {
	r1 := restaurant(1, "R1", "r1", map[int64]bool{productA: false})
	r2 := restaurant(2, "R2", "r2", map[int64]bool{productA: true})
	m := NewMatcher([]*foodcart.Restaurant{r1, r2}, MatchAll)

	o := order(1, "x", productA)
	assigned := int64(1)
	o.RestaurantID = &assigned

	matched := m.Match(o)
	require.Len(t, matched, 1)
	assert.Same(t, r1, matched[0])

	unknown := int64(42)
	o.RestaurantID = &unknown
	assert.Empty(t, m.Match(o))
}

func TestParseEmptyOrderPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    EmptyOrderPolicy
		wantErr bool
	}{
		{"", MatchAll, false},
		{"all", MatchAll, false},
		{" NONE ", MatchNone, false},
		{"some", MatchAll, true},
	}

	for _, tt := range tests {
		got, err := ParseEmptyOrderPolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)

			continue
		}

		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	assert.Equal(t, "none", MatchNone.String())
}
