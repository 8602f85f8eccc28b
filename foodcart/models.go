// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

// Package foodcart holds the catalog (restaurants, products, menus) and the
// customer orders, together with their persistence.
package foodcart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOrder         = errors.New("invalid order")
	ErrOrderNotFound        = errors.New("order not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrRestaurantNotFound   = errors.New("restaurant not found")
	ErrInvalidProductPrice  = errors.New("product price must not be negative")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// OrderStatus is the workflow state of an order, stored as a three letter code.
type OrderStatus string

const (
	StatusUnprocessed OrderStatus = "new"
	StatusProcessing  OrderStatus = "prc"
	StatusInDelivery  OrderStatus = "ind"
	StatusClosed      OrderStatus = "cls"
	StatusCanceled    OrderStatus = "cnc"
)

// statusOrder is the order in which staff see the statuses.
var statusOrder = map[OrderStatus]int{
	StatusUnprocessed: 0,
	StatusProcessing:  1,
	StatusInDelivery:  2,
	StatusClosed:      3,
	StatusCanceled:    4,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := statusOrder[s]

	return ok
}

// Open reports whether the order still needs attention.
func (s OrderStatus) Open() bool {
	return s != StatusClosed && s != StatusCanceled
}

// Rank orders statuses along the workflow.
func (s OrderStatus) Rank() int {
	if r, ok := statusOrder[s]; ok {
		return r
	}

	return len(statusOrder)
}

// Label returns a human readable status.
func (s OrderStatus) Label() string {
	switch s {
	case StatusUnprocessed:
		return "Unprocessed"
	case StatusProcessing:
		return "Processing"
	case StatusInDelivery:
		return "In delivery"
	case StatusClosed:
		return "Closed"
	case StatusCanceled:
		return "Canceled"
	default:
		return string(s)
	}
}

// PaymentMethod of an order.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

// MenuItem says whether a restaurant sells a product right now.
type MenuItem struct {
	RestaurantID int64 `json:"restaurant_id" db:"restaurant_id"`
	ProductID    int64 `json:"product_id"    db:"product_id"`
	Available    bool  `json:"available"     db:"available"`
}

// Restaurant is a kitchen that can fulfill orders.
type Restaurant struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Address      string     `json:"address"`
	ContactPhone string     `json:"contact_phone"`
	Menu         []MenuItem `json:"menu,omitempty"`
}

// Available reports whether the restaurant's menu has productID in stock.
func (r *Restaurant) Available(productID int64) bool {
	for _, item := range r.Menu {
		if item.ProductID == productID {
			return item.Available
		}
	}

	return false
}

// Product is an item of the catalog.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category,omitempty"`
	Price         decimal.Decimal `json:"price"`
	SpecialStatus bool            `json:"special_status"`
	Description   string          `json:"description,omitempty"`
}

// OrderItem is a line of an order. Price is the unit price of the product
// when the order was registered.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is a customer order.
type Order struct {
	ID            int64         `json:"id"`
	Firstname     string        `json:"firstname"`
	Lastname      string        `json:"lastname"`
	Phonenumber   string        `json:"phonenumber"`
	Address       string        `json:"address"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        OrderStatus   `json:"status"`
	Comments      string        `json:"comments,omitempty"`
	RestaurantID  *int64        `json:"restaurant_id,omitempty"`
	RegisteredAt  time.Time     `json:"registered_at"`
	CalledAt      *time.Time    `json:"called_at,omitempty"`
	DeliveryAt    *time.Time    `json:"delivery_at,omitempty"`
	Items         []OrderItem   `json:"items"`
}

// TotalPrice returns the sum of unit price times quantity over all lines.
func (o *Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return total
}

// ProductIDs returns the distinct products of the order in line order.
func (o *Order) ProductIDs() []int64 {
	seen := make(map[int64]bool, len(o.Items))
	ids := make([]int64, 0, len(o.Items))

	for _, item := range o.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	return ids
}

// ProductAvailability is a row of the availability matrix.
type ProductAvailability struct {
	Product      *Product `json:"product"`
	Availability []bool   `json:"availability"` // aligned with the restaurants
}

// AvailabilityMatrix tells, for every product, whether each restaurant
// has it in stock. A missing menu entry counts as unavailable.
func AvailabilityMatrix(restaurants []*Restaurant, products []*Product) []ProductAvailability {
	result := make([]ProductAvailability, 0, len(products))

	for _, product := range products {
		row := ProductAvailability{Product: product, Availability: make([]bool, len(restaurants))}
		for i, restaurant := range restaurants {
			row.Availability[i] = restaurant.Available(product.ID)
		}

		result = append(result, row)
	}

	return result
}
