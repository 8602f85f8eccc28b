// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"slices"

	"github.com/aqwarius2003/star-burger-dockerizations/dispatch"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
)

// Flag names that override the environment.
const (
	flagDBPath      = "db-path"
	flagGeocoder    = "geocoder"
	flagPlacesCache = "places-cache"
	flagLogLevel    = "log-level"
	flagHTTPTrace   = "http-trace"
)

const (
	geocoderYandex = "yandex"
	geocoderGoogle = "google"

	cacheDB     = "db"
	cacheMemory = "memory"
	cacheRedis  = "redis"
)

// Config is read from the environment; command line flags take precedence.
type Config struct {
	DBPath           string `envconfig:"DB_PATH"                 default:"data"`
	Geocoder         string `envconfig:"GEOCODER"                default:"yandex"`
	YandexAPIKey     string `envconfig:"YANDEX_GEOCODER_API_KEY"`
	GoogleAPIKey     string `envconfig:"GOOGLE_MAPS_API_KEY"`
	GoogleRegion     string `envconfig:"GOOGLE_MAPS_REGION"      default:"ru"`
	PlacesCache      string `envconfig:"PLACES_CACHE"            default:"db"`
	RedisAddr        string `envconfig:"REDIS_ADDR"              default:"localhost:6379"`
	ListenAddr       string `envconfig:"LISTEN_ADDR"             default:"localhost:8080"`
	LogLevel         string `envconfig:"LOG_LEVEL"               default:"info"`
	EmptyOrderPolicy string `envconfig:"EMPTY_ORDER_POLICY"      default:"all"`
	HTTPTrace        bool   `envconfig:"HTTP_TRACE"`
}

// Load fills c from the environment, applies the flags the user set and
// validates the result.
func (c *Config) Load(flags *pflag.FlagSet) error {
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	overrides := map[string]*string{
		flagDBPath:      &c.DBPath,
		flagGeocoder:    &c.Geocoder,
		flagPlacesCache: &c.PlacesCache,
		flagLogLevel:    &c.LogLevel,
	}

	for name, target := range overrides {
		if flags.Changed(name) {
			value, err := flags.GetString(name)
			if err != nil {
				return err
			}

			*target = value
		}
	}

	if flags.Changed(flagHTTPTrace) {
		value, err := flags.GetBool(flagHTTPTrace)
		if err != nil {
			return err
		}

		c.HTTPTrace = value
	}

	return c.validate()
}

func (c *Config) validate() error {
	if !slices.Contains([]string{geocoderYandex, geocoderGoogle}, c.Geocoder) {
		return fmt.Errorf("unknown geocoder %q (want %s or %s)", c.Geocoder, geocoderYandex, geocoderGoogle)
	}

	if !slices.Contains([]string{cacheDB, cacheMemory, cacheRedis}, c.PlacesCache) {
		return fmt.Errorf("unknown places cache %q (want %s, %s or %s)", c.PlacesCache, cacheDB, cacheMemory, cacheRedis)
	}

	if c.DBPath == "" {
		return fmt.Errorf("database path must not be empty")
	}

	if _, err := dispatch.ParseEmptyOrderPolicy(c.EmptyOrderPolicy); err != nil {
		return err
	}

	return nil
}
