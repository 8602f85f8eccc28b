// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package foodcart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Repository handles persistence of the catalog and the orders.
type Repository interface {
	// CreateSchema creates the catalog and order tables
	CreateSchema() error

	//////// Catalog
	// SaveRestaurant inserts the restaurant when its ID is zero, updates it otherwise
	SaveRestaurant(ctx context.Context, restaurant *Restaurant) error
	// SaveProduct inserts the product when its ID is zero, updates it otherwise
	SaveProduct(ctx context.Context, product *Product) error
	// SaveMenuItem upserts the availability of a product in a restaurant
	SaveMenuItem(ctx context.Context, item MenuItem) error
	// ListRestaurants returns the restaurants with their menus, sorted by name
	ListRestaurants(ctx context.Context) ([]*Restaurant, error)
	// ListProducts returns the products sorted by name
	ListProducts(ctx context.Context) ([]*Product, error)

	//////// Orders
	// CreateOrder registers an order, snapshotting the current product prices
	CreateOrder(ctx context.Context, order *Order) error
	// GetOrder returns an order with its items
	GetOrder(ctx context.Context, id int64) (*Order, error)
	// ListOpenOrders returns the orders that are neither closed nor canceled
	ListOpenOrders(ctx context.Context) ([]*Order, error)
	// UpdateOrderStatuses sets the status of every order in ids with a single statement
	UpdateOrderStatuses(ctx context.Context, status OrderStatus, ids []int64) error
	// AssignRestaurant sets the restaurant that will cook the order
	AssignRestaurant(ctx context.Context, orderID, restaurantID int64) error
}

type sqlRepository struct {
	db *sqlx.DB
}

// NewRepository creates a new repository over a duckdb connection.
func NewRepository(db *sql.DB) Repository {
	return &sqlRepository{db: sqlx.NewDb(db, "duckdb")}
}

func (r *sqlRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS restaurants_seq START 1;
		CREATE SEQUENCE IF NOT EXISTS products_seq START 1;
		CREATE SEQUENCE IF NOT EXISTS orders_seq START 1;
		CREATE SEQUENCE IF NOT EXISTS order_items_seq START 1;

		CREATE TABLE IF NOT EXISTS restaurants (
			id INTEGER PRIMARY KEY DEFAULT nextval('restaurants_seq'),
			name VARCHAR NOT NULL,
			address VARCHAR NOT NULL DEFAULT '',
			contact_phone VARCHAR NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY DEFAULT nextval('products_seq'),
			name VARCHAR NOT NULL,
			category VARCHAR NOT NULL DEFAULT '',
			price DECIMAL(8, 2) NOT NULL CHECK (price >= 0),
			special_status BOOLEAN NOT NULL DEFAULT FALSE,
			description VARCHAR NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS menu_items (
			restaurant_id INTEGER NOT NULL,
			product_id INTEGER NOT NULL,
			available BOOLEAN NOT NULL DEFAULT TRUE,
			PRIMARY KEY (restaurant_id, product_id)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY DEFAULT nextval('orders_seq'),
			firstname VARCHAR NOT NULL,
			lastname VARCHAR NOT NULL,
			phonenumber VARCHAR NOT NULL,
			address VARCHAR NOT NULL,
			payment_method VARCHAR NOT NULL DEFAULT 'card',
			registered_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			called_at TIMESTAMP,
			delivery_at TIMESTAMP,
			status VARCHAR NOT NULL DEFAULT 'new',
			comments VARCHAR NOT NULL DEFAULT '',
			restaurant_id INTEGER
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id INTEGER PRIMARY KEY DEFAULT nextval('order_items_seq'),
			order_id INTEGER NOT NULL,
			product_id INTEGER NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			price DECIMAL(8, 2) NOT NULL CHECK (price >= 0)
		);
	`)

	return err
}

//////// Catalog

func (r *sqlRepository) SaveRestaurant(ctx context.Context, restaurant *Restaurant) error {
	if restaurant.ID == 0 {
		return r.db.QueryRowxContext(ctx, `
			INSERT INTO restaurants (name, address, contact_phone) VALUES (?, ?, ?)
			RETURNING id
		`, restaurant.Name, restaurant.Address, restaurant.ContactPhone).Scan(&restaurant.ID)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE restaurants SET name = ?, address = ?, contact_phone = ? WHERE id = ?
	`, restaurant.Name, restaurant.Address, restaurant.ContactPhone, restaurant.ID)
	if err != nil {
		return err
	}

	return expectAffected(res, ErrRestaurantNotFound)
}

func (r *sqlRepository) SaveProduct(ctx context.Context, product *Product) error {
	if product.Price.IsNegative() {
		return ErrInvalidProductPrice
	}

	if product.ID == 0 {
		return r.db.QueryRowxContext(ctx, `
			INSERT INTO products (name, category, price, special_status, description)
			VALUES (?, ?, CAST(? AS DECIMAL(8, 2)), ?, ?)
			RETURNING id
		`, product.Name, product.Category, product.Price.StringFixed(2), product.SpecialStatus, product.Description,
		).Scan(&product.ID)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, category = ?, price = CAST(? AS DECIMAL(8, 2)), special_status = ?, description = ?
		WHERE id = ?
	`, product.Name, product.Category, product.Price.StringFixed(2), product.SpecialStatus, product.Description, product.ID)
	if err != nil {
		return err
	}

	return expectAffected(res, ErrProductNotFound)
}

func (r *sqlRepository) SaveMenuItem(ctx context.Context, item MenuItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO menu_items (restaurant_id, product_id, available) VALUES (?, ?, ?)
		ON CONFLICT (restaurant_id, product_id) DO UPDATE SET available = excluded.available
	`, item.RestaurantID, item.ProductID, item.Available)

	return err
}

type restaurantRow struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	Address      string `db:"address"`
	ContactPhone string `db:"contact_phone"`
}

func (r *sqlRepository) ListRestaurants(ctx context.Context) ([]*Restaurant, error) {
	var rows []restaurantRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, address, contact_phone FROM restaurants ORDER BY name, id
	`); err != nil {
		return nil, fmt.Errorf("listing restaurants: %w", err)
	}

	var items []MenuItem
	if err := r.db.SelectContext(ctx, &items, `
		SELECT restaurant_id, product_id, available FROM menu_items ORDER BY restaurant_id, product_id
	`); err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}

	menus := make(map[int64][]MenuItem)
	for _, item := range items {
		menus[item.RestaurantID] = append(menus[item.RestaurantID], item)
	}

	restaurants := make([]*Restaurant, 0, len(rows))
	for _, row := range rows {
		restaurants = append(restaurants, &Restaurant{
			ID:           row.ID,
			Name:         row.Name,
			Address:      row.Address,
			ContactPhone: row.ContactPhone,
			Menu:         menus[row.ID],
		})
	}

	return restaurants, nil
}

type productRow struct {
	ID            int64           `db:"id"`
	Name          string          `db:"name"`
	Category      string          `db:"category"`
	Price         decimal.Decimal `db:"price"`
	SpecialStatus bool            `db:"special_status"`
	Description   string          `db:"description"`
}

// DuckDB hands DECIMAL columns back as its own type, cast them for decimal.Decimal.
const productSelect = `
	SELECT id, name, category, CAST(price AS VARCHAR) AS price, special_status, description
	FROM products
`

func (r *sqlRepository) ListProducts(ctx context.Context) ([]*Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, productSelect+" ORDER BY name, id"); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products := make([]*Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, &Product{
			ID:            row.ID,
			Name:          row.Name,
			Category:      row.Category,
			Price:         row.Price,
			SpecialStatus: row.SpecialStatus,
			Description:   row.Description,
		})
	}

	return products, nil
}

//////// Orders

func validateOrder(order *Order) error {
	var missing []string

	for name, value := range map[string]string{
		"firstname":   order.Firstname,
		"lastname":    order.Lastname,
		"phonenumber": order.Phonenumber,
		"address":     order.Address,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)

		return fmt.Errorf("%w: missing %s", ErrInvalidOrder, strings.Join(missing, ", "))
	}

	if len(order.Items) == 0 {
		return fmt.Errorf("%w: products must not be empty", ErrInvalidOrder)
	}

	for _, item := range order.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: quantity of product %d must be at least 1", ErrInvalidOrder, item.ProductID)
		}
	}

	switch order.PaymentMethod {
	case "":
		order.PaymentMethod = PaymentCard
	case PaymentCard, PaymentCash:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, order.PaymentMethod)
	}

	return nil
}

func (r *sqlRepository) CreateOrder(ctx context.Context, order *Order) (err error) {
	if err := validateOrder(order); err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = errors.Join(err, rErr)
			}
		}
	}()

	prices, err := productPrices(ctx, tx, order.ProductIDs())
	if err != nil {
		return err
	}

	if order.Status == "" {
		order.Status = StatusUnprocessed
	}

	if order.RegisteredAt.IsZero() {
		order.RegisteredAt = time.Now()
	}

	var restaurantID sql.NullInt64
	if order.RestaurantID != nil {
		restaurantID = sql.NullInt64{Int64: *order.RestaurantID, Valid: true}
	}

	if err = tx.QueryRowxContext(ctx, `
		INSERT INTO orders (firstname, lastname, phonenumber, address, payment_method,
		                    registered_at, status, comments, restaurant_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		order.Firstname,
		order.Lastname,
		order.Phonenumber,
		order.Address,
		string(order.PaymentMethod),
		order.RegisteredAt,
		string(order.Status),
		order.Comments,
		restaurantID,
	).Scan(&order.ID); err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		item.Price = prices[item.ProductID]

		if err = tx.QueryRowxContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES (?, ?, ?, CAST(? AS DECIMAL(8, 2)))
			RETURNING id
		`, item.OrderID, item.ProductID, item.Quantity, item.Price.StringFixed(2)).Scan(&item.ID); err != nil {
			return fmt.Errorf("inserting item for product %d: %w", item.ProductID, err)
		}
	}

	return tx.Commit()
}

func productPrices(ctx context.Context, tx *sqlx.Tx, ids []int64) (map[int64]decimal.Decimal, error) {
	query, args, err := sqlx.In(`SELECT id, CAST(price AS VARCHAR) AS price FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID    int64           `db:"id"`
		Price decimal.Decimal `db:"price"`
	}
	if err := tx.SelectContext(ctx, &rows, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("loading product prices: %w", err)
	}

	prices := make(map[int64]decimal.Decimal, len(rows))
	for _, row := range rows {
		prices[row.ID] = row.Price
	}

	for _, id := range ids {
		if _, ok := prices[id]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
		}
	}

	return prices, nil
}

type orderRow struct {
	ID            int64         `db:"id"`
	Firstname     string        `db:"firstname"`
	Lastname      string        `db:"lastname"`
	Phonenumber   string        `db:"phonenumber"`
	Address       string        `db:"address"`
	PaymentMethod string        `db:"payment_method"`
	RegisteredAt  time.Time     `db:"registered_at"`
	CalledAt      sql.NullTime  `db:"called_at"`
	DeliveryAt    sql.NullTime  `db:"delivery_at"`
	Status        string        `db:"status"`
	Comments      string        `db:"comments"`
	RestaurantID  sql.NullInt64 `db:"restaurant_id"`
}

func (row *orderRow) toOrder() *Order {
	order := &Order{
		ID:            row.ID,
		Firstname:     row.Firstname,
		Lastname:      row.Lastname,
		Phonenumber:   row.Phonenumber,
		Address:       row.Address,
		PaymentMethod: PaymentMethod(row.PaymentMethod),
		RegisteredAt:  row.RegisteredAt,
		Status:        OrderStatus(row.Status),
		Comments:      row.Comments,
	}

	if row.CalledAt.Valid {
		order.CalledAt = &row.CalledAt.Time
	}

	if row.DeliveryAt.Valid {
		order.DeliveryAt = &row.DeliveryAt.Time
	}

	if row.RestaurantID.Valid {
		order.RestaurantID = &row.RestaurantID.Int64
	}

	return order
}

const orderSelect = `
	SELECT id, firstname, lastname, phonenumber, address, payment_method,
	       registered_at, called_at, delivery_at, status, comments, restaurant_id
	FROM orders
`

func (r *sqlRepository) GetOrder(ctx context.Context, id int64) (*Order, error) {
	var row orderRow
	if err := r.db.GetContext(ctx, &row, orderSelect+" WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
		}

		return nil, err
	}

	orders := []*Order{row.toOrder()}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders[0], nil
}

func (r *sqlRepository) ListOpenOrders(ctx context.Context) ([]*Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, orderSelect+" WHERE status NOT IN (?, ?) ORDER BY id",
		string(StatusClosed), string(StatusCanceled)); err != nil {
		return nil, fmt.Errorf("listing open orders: %w", err)
	}

	orders := make([]*Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, rows[i].toOrder())
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *sqlRepository) loadItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int64]*Order, len(orders))
	ids := make([]int64, 0, len(orders))

	for _, order := range orders {
		byID[order.ID] = order
		ids = append(ids, order.ID)
	}

	query, args, err := sqlx.In(`
		SELECT id, order_id, product_id, quantity, CAST(price AS VARCHAR) AS price
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY order_id, id
	`, ids)
	if err != nil {
		return err
	}

	var items []struct {
		ID        int64           `db:"id"`
		OrderID   int64           `db:"order_id"`
		ProductID int64           `db:"product_id"`
		Quantity  int             `db:"quantity"`
		Price     decimal.Decimal `db:"price"`
	}
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("loading order items: %w", err)
	}

	for _, item := range items {
		order := byID[item.OrderID]
		order.Items = append(order.Items, OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	return nil
}

func (r *sqlRepository) UpdateOrderStatuses(ctx context.Context, status OrderStatus, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, status)
	}

	query, args, err := sqlx.In(`UPDATE orders SET status = ? WHERE id IN (?)`, string(status), ids)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("updating status of %d orders: %w", len(ids), err)
	}

	return nil
}

func (r *sqlRepository) AssignRestaurant(ctx context.Context, orderID, restaurantID int64) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT count(*) > 0 FROM restaurants WHERE id = ?`, restaurantID); err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("%w: %d", ErrRestaurantNotFound, restaurantID)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE orders SET restaurant_id = ? WHERE id = ?`, restaurantID, orderID)
	if err != nil {
		return err
	}

	return expectAffected(res, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID))
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return notFound
	}

	return nil
}
