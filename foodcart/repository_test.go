// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package foodcart

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sql.DB, Repository) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	repo := NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db, repo
}

type catalog struct {
	burger, fries *Product
	center, north *Restaurant
}

func seedCatalog(t *testing.T, repo Repository) catalog {
	t.Helper()

	ctx := context.Background()
	c := catalog{
		burger: &Product{Name: "Burger", Category: "Burgers", Price: decimal.RequireFromString("350.00")},
		fries:  &Product{Name: "Fries", Price: decimal.RequireFromString("99.90")},
		center: &Restaurant{Name: "Star Burger Center", Address: "Москва, Арбат, 2"},
		north:  &Restaurant{Name: "Star Burger North", Address: "Москва, Сокол, 3"},
	}

	require.NoError(t, repo.SaveProduct(ctx, c.burger))
	require.NoError(t, repo.SaveProduct(ctx, c.fries))
	require.NoError(t, repo.SaveRestaurant(ctx, c.north))
	require.NoError(t, repo.SaveRestaurant(ctx, c.center))

	require.NoError(t, repo.SaveMenuItem(ctx, MenuItem{RestaurantID: c.center.ID, ProductID: c.burger.ID, Available: true}))
	require.NoError(t, repo.SaveMenuItem(ctx, MenuItem{RestaurantID: c.center.ID, ProductID: c.fries.ID, Available: true}))
	require.NoError(t, repo.SaveMenuItem(ctx, MenuItem{RestaurantID: c.north.ID, ProductID: c.burger.ID, Available: true}))

	return c
}

func newOrder(address string, items ...OrderItem) *Order {
	return &Order{
		Firstname:   "Ivan",
		Lastname:    "Petrov",
		Phonenumber: "+79001234567",
		Address:     address,
		Items:       items,
	}
}

func TestCreateSchemaIsIdempotent(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	require.NoError(t, repo.CreateSchema())
}

func TestListRestaurantsWithMenus(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	c := seedCatalog(t, repo)
	ctx := context.Background()

	// flipping availability updates the existing entry
	require.NoError(t, repo.SaveMenuItem(ctx, MenuItem{RestaurantID: c.north.ID, ProductID: c.burger.ID, Available: false}))

	restaurants, err := repo.ListRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, restaurants, 2)

	assert.Equal(t, "Star Burger Center", restaurants[0].Name)
	assert.Len(t, restaurants[0].Menu, 2)
	assert.True(t, restaurants[0].Available(c.fries.ID))

	assert.Equal(t, "Star Burger North", restaurants[1].Name)
	require.Len(t, restaurants[1].Menu, 1)
	assert.False(t, restaurants[1].Available(c.burger.ID))
}

func TestSaveRestaurantUpdate(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	c := seedCatalog(t, repo)

	c.north.ContactPhone = "+74950000000"
	require.NoError(t, repo.SaveRestaurant(ctx, c.north))

	restaurants, err := repo.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Equal(t, "+74950000000", restaurants[1].ContactPhone)

	err = repo.SaveRestaurant(ctx, &Restaurant{ID: 999, Name: "ghost"})
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}

func TestListProducts(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	c := seedCatalog(t, repo)

	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Burger", products[0].Name)
	assert.Equal(t, "Burgers", products[0].Category)
	assert.True(t, c.burger.Price.Equal(products[0].Price))
	assert.Equal(t, "99.90", products[1].Price.StringFixed(2))

	err = repo.SaveProduct(ctx, &Product{Name: "Free lunch", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidProductPrice)
}

func TestCreateOrderSnapshotsPrices(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	c := seedCatalog(t, repo)

	order := newOrder("Москва, Красная площадь, 1",
		OrderItem{ProductID: c.burger.ID, Quantity: 2},
		OrderItem{ProductID: c.fries.ID, Quantity: 1},
	)
	require.NoError(t, repo.CreateOrder(ctx, order))
	assert.NotZero(t, order.ID)
	assert.Equal(t, StatusUnprocessed, order.Status)
	assert.Equal(t, PaymentCard, order.PaymentMethod)

	// later price changes don't affect the order
	c.burger.Price = decimal.RequireFromString("500.00")
	require.NoError(t, repo.SaveProduct(ctx, c.burger))

	stored, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "350.00", stored.Items[0].Price.StringFixed(2))
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, "799.90", stored.TotalPrice().StringFixed(2))
	assert.Nil(t, stored.RestaurantID)
	assert.Equal(t, "Москва, Красная площадь, 1", stored.Address)
}

func TestCreateOrderValidation(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	c := seedCatalog(t, repo)

	tests := []struct {
		name  string
		order *Order
		want  error
	}{
		{"no items", newOrder("addr"), ErrInvalidOrder},
		{"zero quantity", newOrder("addr", OrderItem{ProductID: c.burger.ID}), ErrInvalidOrder},
		{"missing address", newOrder("  ", OrderItem{ProductID: c.burger.ID, Quantity: 1}), ErrInvalidOrder},
		{"unknown product", newOrder("addr", OrderItem{ProductID: 4242, Quantity: 1}), ErrProductNotFound},
		{"bad payment", func() *Order {
			o := newOrder("addr", OrderItem{ProductID: c.burger.ID, Quantity: 1})
			o.PaymentMethod = "barter"

			return o
		}(), ErrInvalidPaymentMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.CreateOrder(ctx, tt.order)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	orders, err := repo.ListOpenOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders, "failed registrations must not leave orders behind")
}

func TestListOpenOrdersAndBulkStatusUpdate(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	c := seedCatalog(t, repo)

	var ids []int64

	for range 4 {
		order := newOrder("Москва, Тверская, 7", OrderItem{ProductID: c.burger.ID, Quantity: 1})
		require.NoError(t, repo.CreateOrder(ctx, order))
		ids = append(ids, order.ID)
	}

	require.NoError(t, repo.UpdateOrderStatuses(ctx, StatusProcessing, ids[:2]))
	require.NoError(t, repo.UpdateOrderStatuses(ctx, StatusClosed, ids[3:]))
	require.NoError(t, repo.UpdateOrderStatuses(ctx, StatusClosed, nil))

	orders, err := repo.ListOpenOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)

	assert.Equal(t, ids[0], orders[0].ID)
	assert.Equal(t, StatusProcessing, orders[0].Status)
	assert.Equal(t, StatusProcessing, orders[1].Status)
	assert.Equal(t, StatusUnprocessed, orders[2].Status)

	for _, o := range orders {
		assert.Len(t, o.Items, 1)
	}

	assert.ErrorIs(t, repo.UpdateOrderStatuses(ctx, "zzz", ids), ErrInvalidOrder)
}

func TestAssignRestaurant(t *testing.T) {
	db, repo := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	c := seedCatalog(t, repo)

	order := newOrder("Москва, Тверская, 7", OrderItem{ProductID: c.burger.ID, Quantity: 1})
	require.NoError(t, repo.CreateOrder(ctx, order))

	require.NoError(t, repo.AssignRestaurant(ctx, order.ID, c.north.ID))

	stored, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RestaurantID)
	assert.Equal(t, c.north.ID, *stored.RestaurantID)

	assert.ErrorIs(t, repo.AssignRestaurant(ctx, order.ID, 999), ErrRestaurantNotFound)
	assert.ErrorIs(t, repo.AssignRestaurant(ctx, 999, c.north.ID), ErrOrderNotFound)

	_, err = repo.GetOrder(ctx, 999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
