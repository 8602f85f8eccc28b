// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aqwarius2003/star-burger-dockerizations/dispatch"
	"github.com/aqwarius2003/star-burger-dockerizations/foodcart"
	"github.com/aqwarius2003/star-burger-dockerizations/utils/textutils"
	"github.com/spf13/cobra"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Customer orders",
}

var ordersRankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Ranks the restaurants able to cook every open order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openServices(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer s.Close()

		batch, err := s.dispatcher.ProcessOpenOrders(cmd.Context())
		if err != nil {
			return err
		}

		printRankings(os.Stdout, batch.Orders, batch.Rankings)

		return nil
	},
}

const (
	colStatus     = 12
	colAddress    = 40
	colRestaurant = 30
	colDistance   = 10
)

func printRankings(w io.Writer, orders []*foodcart.Order, rankings []dispatch.OrderRanking) {
	a, b, c, d, e := strings.Repeat("─", 6), strings.Repeat("─", colStatus), strings.Repeat("─", colAddress),
		strings.Repeat("─", colRestaurant), strings.Repeat("─", colDistance)

	fmt.Fprintf(w, "╭─%s─┬─%s─┬─%s─┬─%s─┬─%s─╮\n", a, b, c, d, e)
	fmt.Fprintf(w, "│ %6s │ %-12s │ %-40s │ %-30s │ %10s │\n", "Order", "Status", "Address", "Restaurant", "Distance")
	fmt.Fprintf(w, "├─%s─┼─%s─┼─%s─┼─%s─┼─%s─┤\n", a, b, c, d, e)

	for i, order := range orders {
		entries := rankings[i].Ranking
		if len(entries) == 0 {
			fmt.Fprintf(w, "│ %6d │ %-12s │ %-40s │ %-30s │ %10s │\n", order.ID, order.Status.Label(),
				textutils.Truncate(order.Address, colAddress), "no restaurant", "")

			continue
		}

		for j, entry := range entries {
			id, status, address := "", "", ""
			if j == 0 {
				id, status, address = fmt.Sprint(order.ID), order.Status.Label(), textutils.Truncate(order.Address, colAddress)
			}

			fmt.Fprintf(w, "│ %6s │ %-12s │ %-40s │ %-30s │ %10s │\n", id, status, address,
				textutils.Truncate(entry.RestaurantName, colRestaurant), textutils.FormatKm(entry.DistanceKm))
		}
	}

	fmt.Fprintf(w, "╰─%s─┴─%s─┴─%s─┴─%s─┴─%s─╯\n", a, b, c, d, e)
	fmt.Fprintf(w, "%s open orders\n", textutils.FormatInt(int64(len(orders))))
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersRankCmd)
}
