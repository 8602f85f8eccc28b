// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"github.com/aqwarius2003/star-burger-dockerizations/dispatch"
	"github.com/aqwarius2003/star-burger-dockerizations/foodcart"
	"github.com/aqwarius2003/star-burger-dockerizations/places"
	"github.com/aqwarius2003/star-burger-dockerizations/utils/httputils"
	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

const dbFile = "starburger.duckdb"

// geocodingKeyName is the display name of the Google Cloud API key that the
// Maps geocoder falls back to.
const geocodingKeyName = "Star Burger Geocoding Key"

// services wires the stores, the coordinate cache and the dispatcher.
type services struct {
	db         *sql.DB
	catalog    foodcart.Repository
	places     places.Cache
	resolver   *places.Resolver
	dispatcher *dispatch.Dispatcher
	closers    []io.Closer
}

func openServices(ctx context.Context, cfg *Config) (*services, error) {
	db, err := openDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	s := &services{db: db, closers: []io.Closer{db}}

	s.catalog = foodcart.NewRepository(db)
	if err := s.catalog.CreateSchema(); err != nil {
		return nil, errors.Join(fmt.Errorf("creating catalog schema: %w", err), s.Close())
	}

	s.places, err = s.openCache(ctx, cfg)
	if err != nil {
		return nil, errors.Join(err, s.Close())
	}

	geocoder, err := newGeocoder(ctx, cfg)
	if err != nil {
		return nil, errors.Join(err, s.Close())
	}

	policy, err := dispatch.ParseEmptyOrderPolicy(cfg.EmptyOrderPolicy)
	if err != nil {
		return nil, errors.Join(err, s.Close())
	}

	s.resolver = places.NewResolver(s.places, geocoder)
	s.dispatcher = dispatch.NewDispatcher(s.catalog, s.resolver, policy)

	return s, nil
}

func openDB(dir string) (*sql.DB, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(dir, dbFile))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return db, nil
}

func (s *services) openCache(ctx context.Context, cfg *Config) (places.Cache, error) {
	switch cfg.PlacesCache {
	case cacheMemory:
		return places.NewMemoryCache(), nil
	case cacheRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		s.closers = append(s.closers, client)

		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}

		return places.NewRedisCache(client), nil
	default:
		repo := places.NewPlaceRepository(s.db)
		if err := repo.CreateSchema(); err != nil {
			return nil, fmt.Errorf("creating places schema: %w", err)
		}

		return repo, nil
	}
}

func (s *services) Close() error {
	var errs []error

	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}

	return errors.Join(errs...)
}

func newGeocoder(ctx context.Context, cfg *Config) (places.Geocoder, error) {
	var trace io.Writer
	if cfg.HTTPTrace {
		trace = os.Stderr
	}

	transport := httputils.NewTransport(nil, userAgent(), trace)

	switch cfg.Geocoder {
	case geocoderGoogle:
		apiKey := cfg.GoogleAPIKey
		if apiKey == "" {
			log.Info("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

			var err error

			apiKey, err = getAPIKeyFromADC(ctx)
			if err != nil {
				return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is not set and ADC failed: %w", err)
			}

			log.Info("Retrieved Google Maps API key via ADC")
		}

		log.Info("Geocoding with Google Maps")

		return places.NewGoogleMapsGeocoder(apiKey, cfg.GoogleRegion, transport), nil
	default:
		if cfg.YandexAPIKey == "" {
			log.Warn("YANDEX_GEOCODER_API_KEY is not set, new addresses will not resolve")
		}

		log.Info("Geocoding with Yandex")

		return places.NewYandexGeocoder(cfg.YandexAPIKey, transport), nil
	}
}

// getAPIKeyFromADC finds the geocoding key of the current project through
// the Cloud API Keys service.
func getAPIKeyFromADC(ctx context.Context) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		// user credentials without a quota project
		projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}

	if projectID == "" {
		return "", errors.New("no project in the default credentials and GOOGLE_CLOUD_PROJECT is not set")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != geocodingKeyName {
			continue
		}

		// ListKeys redacts the secret
		log.WithField("key", key.Name).Debug("Found geocoding key, retrieving secret")

		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key %q has an empty key string", geocodingKeyName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name %q not found in project %s", geocodingKeyName, projectID)
}
