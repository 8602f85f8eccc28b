// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aqwarius2003/star-burger-dockerizations/spatial"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "places:"

// Hash fields of a place record.
const (
	fieldLng       = "lng"
	fieldLat       = "lat"
	fieldCell      = "h3_cell"
	fieldUpdatedAt = "updated_at"
)

// RedisCache is a Cache shared between processes through redis. Each place is
// a hash under "places:<normalized address>"; a hash without coordinates is
// a pending record.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache creates a cache on top of a redis client.
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func redisKey(normalized string) string {
	return redisKeyPrefix + normalized
}

func (c *RedisCache) Lookup(ctx context.Context, address string) (*Place, error) {
	key := NormalizeAddress(address)

	fields, err := c.client.HGetAll(ctx, redisKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading place %q: %w", key, err)
	}

	return placeFromHash(key, fields)
}

func (c *RedisCache) LookupMany(ctx context.Context, addresses []string) (map[string]*Place, error) {
	result := make(map[string]*Place, len(addresses))
	if len(addresses) == 0 {
		return result, nil
	}

	keys := make([]string, len(addresses))
	cmds := make([]*redis.MapStringStringCmd, len(addresses))

	pipe := c.client.Pipeline()

	for i, address := range addresses {
		keys[i] = NormalizeAddress(address)
		cmds[i] = pipe.HGetAll(ctx, redisKey(keys[i]))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("reading %d places: %w", len(keys), err)
	}

	for i, cmd := range cmds {
		place, err := placeFromHash(keys[i], cmd.Val())
		if err != nil {
			return nil, err
		}

		if place != nil {
			result[keys[i]] = place
		}
	}

	return result, nil
}

func (c *RedisCache) Store(ctx context.Context, address string, point spatial.Point) error {
	place, err := newPlace(address, &point, time.Now())
	if err != nil {
		return err
	}

	return c.client.HSet(ctx, redisKey(place.Address),
		fieldLng, strconv.FormatFloat(point.Lng, 'f', -1, 64),
		fieldLat, strconv.FormatFloat(point.Lat, 'f', -1, 64),
		fieldCell, strconv.FormatInt(place.Cell, 10),
		fieldUpdatedAt, place.UpdatedAt.UTC().Format(time.RFC3339Nano),
	).Err()
}

func (c *RedisCache) Register(ctx context.Context, address string) error {
	key := NormalizeAddress(address)

	return c.client.HSetNX(ctx, redisKey(key), fieldUpdatedAt, time.Now().UTC().Format(time.RFC3339Nano)).Err()
}

// List returns every place under the key prefix ordered by address.
func (c *RedisCache) List(ctx context.Context) ([]*Place, error) {
	var addresses []string

	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		addresses = append(addresses, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning places: %w", err)
	}

	found, err := c.LookupMany(ctx, addresses)
	if err != nil {
		return nil, err
	}

	result := make([]*Place, 0, len(found))
	for _, place := range found {
		result = append(result, place)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})

	return result, nil
}

func placeFromHash(key string, fields map[string]string) (*Place, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	place := &Place{Address: key}

	if v, ok := fields[fieldUpdatedAt]; ok {
		updatedAt, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("place %q: invalid %s: %w", key, fieldUpdatedAt, err)
		}

		place.UpdatedAt = updatedAt
	}

	lngStr, okLng := fields[fieldLng]
	latStr, okLat := fields[fieldLat]

	if !okLng || !okLat {
		return place, nil
	}

	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, fmt.Errorf("place %q: invalid %s: %w", key, fieldLng, err)
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("place %q: invalid %s: %w", key, fieldLat, err)
	}

	place.Point = &spatial.Point{Lat: lat, Lng: lng}

	if v, ok := fields[fieldCell]; ok {
		if place.Cell, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("place %q: invalid %s: %w", key, fieldCell, err)
		}
	}

	return place, nil
}
