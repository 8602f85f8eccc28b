// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var config = &Config{}

var rootCmd = &cobra.Command{
	Use:   "star-burger",
	Short: "order dispatching for Star Burger restaurants",
	Long: `
star-burger keeps the catalog and the orders of the Star Burger restaurants and,
for every open order, ranks the restaurants that can cook it by distance to the
customer.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Load(cmd.Flags()); err != nil {
			return err
		}

		return setupLogging(config.LogLevel)
	},
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(lvl)

	return nil
}

var Version = "dev"

func userAgent() string {
	return fmt.Sprintf("star-burger/%s (+https://github.com/aqwarius2003/star-burger-dockerizations)", Version)
}

func init() {
	addConfigFlags(rootCmd.PersistentFlags())
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.String(flagDBPath, "", "directory holding the duckdb database (env DB_PATH)")
	flags.String(flagGeocoder, "", "geocoding provider: yandex or google (env GEOCODER)")
	flags.String(flagPlacesCache, "", "coordinate cache backend: db, memory or redis (env PLACES_CACHE)")
	flags.String(flagLogLevel, "", "log level (env LOG_LEVEL)")
	flags.Bool(flagHTTPTrace, false, "dump geocoder HTTP traffic to stderr (env HTTP_TRACE)")
}

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
