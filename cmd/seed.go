// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aqwarius2003/star-burger-dockerizations/foodcart"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//go:embed testdata/seed.json
var defaultSeed []byte

type seedLine struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type seedData struct {
	Products    []*foodcart.Product `json:"products"`
	Restaurants []struct {
		Name         string          `json:"name"`
		Address      string          `json:"address"`
		ContactPhone string          `json:"contact_phone"`
		Menu         map[string]bool `json:"menu"`
	} `json:"restaurants"`
	Orders []struct {
		foodcart.Order
		Products []seedLine `json:"products"`
	} `json:"orders"`
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Recreates the database with demo restaurants, products and orders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := defaultSeed
			if file != "" {
				var err error
				if data, err = os.ReadFile(file); err != nil {
					return fmt.Errorf("reading seed file: %w", err)
				}
			}

			if err := os.MkdirAll(config.DBPath, 0o750); err != nil {
				return fmt.Errorf("creating db directory: %w", err)
			}

			return seedDatabase(cmd.Context(), filepath.Join(config.DBPath, dbFile), data)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "seed file (defaults to the bundled demo data)")

	return cmd
}

func init() {
	rootCmd.AddCommand(newSeedCmd())
}

func seedDatabase(ctx context.Context, dbPath string, data []byte) error {
	// remove old db if it exists
	_ = os.Remove(dbPath)
	_ = os.Remove(dbPath + ".wal")

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := foodcart.NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return seedCatalog(ctx, repo, data)
}

func seedCatalog(ctx context.Context, repo foodcart.Repository, data []byte) error {
	var seed seedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to unmarshal seed data: %w", err)
	}

	productIDs := make(map[string]int64, len(seed.Products))

	for _, p := range seed.Products {
		if err := repo.SaveProduct(ctx, p); err != nil {
			return fmt.Errorf("saving product %q: %w", p.Name, err)
		}

		productIDs[p.Name] = p.ID
	}

	for _, r := range seed.Restaurants {
		restaurant := &foodcart.Restaurant{Name: r.Name, Address: r.Address, ContactPhone: r.ContactPhone}
		if err := repo.SaveRestaurant(ctx, restaurant); err != nil {
			return fmt.Errorf("saving restaurant %q: %w", r.Name, err)
		}

		for name, available := range r.Menu {
			productID, ok := productIDs[name]
			if !ok {
				return fmt.Errorf("restaurant %q: %w: %s", r.Name, foodcart.ErrProductNotFound, name)
			}

			item := foodcart.MenuItem{RestaurantID: restaurant.ID, ProductID: productID, Available: available}
			if err := repo.SaveMenuItem(ctx, item); err != nil {
				return fmt.Errorf("saving menu of %q: %w", r.Name, err)
			}
		}
	}

	for i := range seed.Orders {
		order := &seed.Orders[i].Order
		for _, line := range seed.Orders[i].Products {
			productID, ok := productIDs[line.Product]
			if !ok {
				return fmt.Errorf("order %d: %w: %s", i+1, foodcart.ErrProductNotFound, line.Product)
			}

			order.Items = append(order.Items, foodcart.OrderItem{ProductID: productID, Quantity: line.Quantity})
		}

		if err := repo.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("saving order %d: %w", i+1, err)
		}
	}

	log.Printf("Seeded %d products, %d restaurants and %d orders",
		len(seed.Products), len(seed.Restaurants), len(seed.Orders))

	return nil
}
