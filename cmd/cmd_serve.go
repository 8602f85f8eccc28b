// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/aqwarius2003/star-burger-dockerizations/restaurateur"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the staff API",
	Long: `Serves the staff JSON API on LISTEN_ADDR:

  GET  /api/orders                  open orders with their restaurant rankings
  POST /api/orders/:id/restaurant   assign a restaurant to an order
  POST /api/order                   register an order
  GET  /api/products                product availability per restaurant
  GET  /api/restaurants             restaurants
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openServices(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer s.Close()

		return restaurateur.NewServer(s.catalog, s.dispatcher, s.places).Run(config.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
