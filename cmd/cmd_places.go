// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aqwarius2003/star-burger-dockerizations/places"
	"github.com/aqwarius2003/star-burger-dockerizations/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Coordinate cache",
}

var placesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the cached places",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openServices(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer s.Close()

		lister, ok := s.places.(places.Lister)
		if !ok {
			return errors.New("the configured places cache can't be listed")
		}

		list, err := lister.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing places: %w", err)
		}

		printPlaces(os.Stdout, list)

		return nil
	},
}

func printPlaces(w io.Writer, list []*places.Place) {
	a, b, c, d := strings.Repeat("─", 50), strings.Repeat("─", 8), strings.Repeat("─", 22), strings.Repeat("─", 15)

	fmt.Fprintf(w, "╭─%s─┬─%s─┬─%s─┬─%s─╮\n", a, b, c, d)
	fmt.Fprintf(w, "│ %-50s │ %-8s │ %-22s │ %-15s │\n", "Address", "State", "Lat, Lng", "H3")
	fmt.Fprintf(w, "├─%s─┼─%s─┼─%s─┼─%s─┤\n", a, b, c, d)

	resolved := 0

	for _, place := range list {
		coords, cell := "", ""
		if place.State() == places.Resolved {
			resolved++
			coords = fmt.Sprintf("%.6f, %.6f", place.Point.Lat, place.Point.Lng)
			cell = fmt.Sprintf("%x", place.Cell)
		}

		fmt.Fprintf(w, "│ %-50s │ %-8s │ %-22s │ %-15s │\n", textutils.Truncate(place.Address, 50), place.State(), coords, cell)
	}

	fmt.Fprintf(w, "╰─%s─┴─%s─┴─%s─┴─%s─╯\n", a, b, c, d)
	fmt.Fprintf(w, "%s places, %s resolved\n",
		textutils.FormatInt(int64(len(list))), textutils.FormatInt(int64(resolved)))
}

const geocodeBatchSize = 25

var placesGeocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolves the addresses of every restaurant and open order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openServices(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer s.Close()

		addresses, err := pendingAddresses(cmd.Context(), s)
		if err != nil {
			return err
		}

		metrics := geocodeAll(cmd.Context(), s.resolver, addresses)
		log.Printf(
			"Geocoding metrics - %d addresses: %d from cache, %d geocoded, %d failed, %d skipped",
			metrics.Addresses,
			metrics.CacheHits,
			metrics.Geocoded,
			metrics.Failed,
			metrics.Skipped,
		)

		return nil
	},
}

// pendingAddresses returns the distinct addresses of restaurants and open orders.
func pendingAddresses(ctx context.Context, s *services) ([]string, error) {
	restaurants, err := s.catalog.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing restaurants: %w", err)
	}

	orders, err := s.catalog.ListOpenOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing open orders: %w", err)
	}

	seen := make(map[string]bool)

	var addresses []string

	add := func(address string) {
		key := places.NormalizeAddress(address)
		if key != "" && !seen[key] {
			seen[key] = true
			addresses = append(addresses, address)
		}
	}

	for _, r := range restaurants {
		add(r.Address)
	}

	for _, o := range orders {
		add(o.Address)
	}

	return addresses, nil
}

func geocodeAll(ctx context.Context, resolver *places.Resolver, addresses []string) *places.ResolveMetrics {
	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(addresses),
			progressbar.OptionSetDescription("Geocoding"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	metrics := &places.ResolveMetrics{}

	for start := 0; start < len(addresses); start += geocodeBatchSize {
		batch := addresses[start:min(start+geocodeBatchSize, len(addresses))]
		metrics.Merge(&resolver.ResolveAll(ctx, batch).Metrics)

		if bar == nil {
			log.Printf("Geocoded %d of %d addresses", start+len(batch), len(addresses))
		} else if err := bar.Add(len(batch)); err != nil {
			log.WithError(err).Debug("Updating progress bar failed")
		}
	}

	return metrics
}

func init() {
	rootCmd.AddCommand(placesCmd)
	placesCmd.AddCommand(placesListCmd)
	placesCmd.AddCommand(placesGeocodeCmd)
}
