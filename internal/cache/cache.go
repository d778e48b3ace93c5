/*
Copyright (C) 2026 Andes Retail

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based caching layer for frequently read
// storefront data, with graceful fallback when Redis is unavailable.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/andesretail/vitrina/internal/models"
)

// Default TTL values.
const (
	DefaultStoreListTTL = 5 * time.Minute
	DefaultCityListTTL  = 1 * time.Hour
)

// Key prefixes for Redis cache.
const (
	keyStoreList = "vitrina:cache:stores:" // + city_id ("" = all)
	keyCityList  = "vitrina:cache:cities"
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StoreListTTL time.Duration
	CityListTTL  time.Duration
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:    "localhost:6379",
		StoreListTTL: DefaultStoreListTTL,
		CityListTTL:  DefaultCityListTTL,
	}
}

// Cache provides Redis-backed caching. When Redis cannot be reached at
// startup the cache runs disabled and every lookup is a miss.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	disabled bool
}

// New creates a new cache instance.
func New(cfg Config, logger zerolog.Logger) *Cache {
	if cfg.StoreListTTL <= 0 {
		cfg.StoreListTTL = DefaultStoreListTTL
	}
	if cfg.CityListTTL <= 0 {
		cfg.CityListTTL = DefaultCityListTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log := logger.With().Str("component", "cache").Logger()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		return &Cache{logger: log, config: cfg, disabled: true}
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")
	return &Cache{client: client, logger: log, config: cfg}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// GetStoreList returns the cached public store list for a city ("" = all).
func (c *Cache) GetStoreList(ctx context.Context, cityID string) ([]models.Store, bool) {
	if c.disabled {
		return nil, false
	}
	raw, err := c.client.Get(ctx, keyStoreList+cityID).Bytes()
	if err != nil {
		return nil, false
	}
	var stores []models.Store
	if err := json.Unmarshal(raw, &stores); err != nil {
		c.logger.Debug().Err(err).Msg("corrupt store list cache entry")
		return nil, false
	}
	return stores, true
}

// SetStoreList caches the public store list for a city.
func (c *Cache) SetStoreList(ctx context.Context, cityID string, stores []models.Store) error {
	if c.disabled {
		return nil
	}
	raw, err := json.Marshal(stores)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyStoreList+cityID, raw, c.config.StoreListTTL).Err()
}

// InvalidateStoreLists drops every cached store list. Called whenever any
// store record changes.
func (c *Cache) InvalidateStoreLists(ctx context.Context) {
	if c.disabled {
		return
	}
	iter := c.client.Scan(ctx, 0, keyStoreList+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Debug().Err(err).Msg("failed to invalidate store list entry")
		}
	}
}

// GetCityList returns the cached city list.
func (c *Cache) GetCityList(ctx context.Context) ([]models.City, bool) {
	if c.disabled {
		return nil, false
	}
	raw, err := c.client.Get(ctx, keyCityList).Bytes()
	if err != nil {
		return nil, false
	}
	var cities []models.City
	if err := json.Unmarshal(raw, &cities); err != nil {
		return nil, false
	}
	return cities, true
}

// SetCityList caches the city list.
func (c *Cache) SetCityList(ctx context.Context, cities []models.City) error {
	if c.disabled {
		return nil
	}
	raw, err := json.Marshal(cities)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyCityList, raw, c.config.CityListTTL).Err()
}

// InvalidateCityList drops the cached city list.
func (c *Cache) InvalidateCityList(ctx context.Context) {
	if c.disabled {
		return
	}
	_ = c.client.Del(ctx, keyCityList).Err()
}
