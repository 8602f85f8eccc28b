// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/aqwarius2003/star-burger-dockerizations/spatial"
)

// PlaceRepository is a Cache persisted in the places table.
type PlaceRepository interface {
	Cache

	// CreateSchema creates the places table
	CreateSchema() error

	// List returns every cached place ordered by address
	List(ctx context.Context) ([]*Place, error)
}

type sqlPlaceRepository struct {
	db *sql.DB
}

// NewPlaceRepository creates a new place repository.
func NewPlaceRepository(db *sql.DB) PlaceRepository {
	return &sqlPlaceRepository{db: db}
}

func (r *sqlPlaceRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS places (
			address VARCHAR PRIMARY KEY,
			longitude DOUBLE,
			latitude DOUBLE,
			h3_cell UBIGINT,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)

	return err
}

const baseSelect = `
	SELECT address, longitude, latitude, h3_cell, updated_at
	FROM places
`

type scanner interface {
	Scan(dest ...any) error
}

func scanPlace(row scanner) (*Place, error) {
	var (
		place    Place
		lng, lat sql.NullFloat64
		cell     sql.NullInt64
	)

	if err := row.Scan(&place.Address, &lng, &lat, &cell, &place.UpdatedAt); err != nil {
		return nil, err
	}

	// either coordinate missing keeps the record pending
	if lng.Valid && lat.Valid {
		place.Point = &spatial.Point{Lat: lat.Float64, Lng: lng.Float64}
	}

	if cell.Valid {
		place.Cell = cell.Int64
	}

	return &place, nil
}

func (r *sqlPlaceRepository) Lookup(ctx context.Context, address string) (*Place, error) {
	place, err := scanPlace(r.db.QueryRowContext(ctx, baseSelect+" WHERE address = ?", NormalizeAddress(address)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	return place, err
}

func (r *sqlPlaceRepository) LookupMany(ctx context.Context, addresses []string) (map[string]*Place, error) {
	result := make(map[string]*Place, len(addresses))
	if len(addresses) == 0 {
		return result, nil
	}

	args := make([]any, len(addresses))
	for i, address := range addresses {
		args[i] = NormalizeAddress(address)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")

	rows, err := r.db.QueryContext(ctx, baseSelect+" WHERE address IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}

		result[place.Address] = place
	}

	return result, rows.Err()
}

func (r *sqlPlaceRepository) Store(ctx context.Context, address string, point spatial.Point) error {
	place, err := newPlace(address, &point, time.Now())
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO places (address, longitude, latitude, h3_cell, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (address) DO UPDATE SET
			longitude = excluded.longitude,
			latitude = excluded.latitude,
			h3_cell = excluded.h3_cell,
			updated_at = excluded.updated_at
	`,
		place.Address,
		place.Point.Lng,
		place.Point.Lat,
		place.Cell,
		place.UpdatedAt,
	)

	return err
}

func (r *sqlPlaceRepository) Register(ctx context.Context, address string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO places (address, updated_at) VALUES (?, ?)
		ON CONFLICT (address) DO NOTHING
	`, NormalizeAddress(address), time.Now())

	return err
}

func (r *sqlPlaceRepository) List(ctx context.Context) ([]*Place, error) {
	rows, err := r.db.QueryContext(ctx, baseSelect+" ORDER BY address")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Place

	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, place)
	}

	return result, rows.Err()
}
