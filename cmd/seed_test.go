// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/aqwarius2003/star-burger-dockerizations/foodcart"
	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCatalog(t *testing.T) {
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	defer db.Close()

	repo := foodcart.NewRepository(db)
	require.NoError(t, repo.CreateSchema())

	ctx := context.Background()
	require.NoError(t, seedCatalog(ctx, repo, defaultSeed))

	restaurants, err := repo.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Len(t, restaurants, 3)

	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 4)

	orders, err := repo.ListOpenOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "Москва, Красная площадь, 1", orders[0].Address)
	assert.Equal(t, "647.00", orders[0].TotalPrice().StringFixed(2))
	assert.Equal(t, foodcart.PaymentCash, orders[1].PaymentMethod)
	assert.Equal(t, "Позвонить за 10 минут", orders[2].Comments)
}

func TestSeedCatalogUnknownProduct(t *testing.T) {
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	defer db.Close()

	repo := foodcart.NewRepository(db)
	require.NoError(t, repo.CreateSchema())

	data := []byte(`{"restaurants": [{"name": "R", "menu": {"Ghost": true}}]}`)
	err = seedCatalog(context.Background(), repo, data)
	assert.ErrorIs(t, err, foodcart.ErrProductNotFound)
}

func TestSeedDatabaseRecreates(t *testing.T) {
	path := filepath.Join(t.TempDir(), dbFile)
	ctx := context.Background()

	require.NoError(t, seedDatabase(ctx, path, defaultSeed))
	require.NoError(t, seedDatabase(ctx, path, defaultSeed))

	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM orders").Scan(&n))
	assert.Equal(t, 3, n)
}
