package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bluele/gcache"

	"github.com/jengzang/bikeshare-go/internal/loader"
	"github.com/jengzang/bikeshare-go/internal/models"
)

// CityReader is the part of the loader the cache needs
type CityReader interface {
	Name(city string) (string, error)
	ReadCity(ctx context.Context, city string) (*models.Dataset, error)
	Cities() []string
}

// CachedLoader keeps recently used unfiltered city tables in an LRU cache
// and filters them per request. Cached datasets are never modified.
type CachedLoader struct {
	reader CityReader
	cache  gcache.Cache
	logger *slog.Logger
}

// NewCachedLoader creates a cache holding up to size cities, each for at
// most ttl. A zero ttl keeps entries until they are evicted.
func NewCachedLoader(reader CityReader, size int, ttl time.Duration, logger *slog.Logger) *CachedLoader {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	builder := gcache.New(size).LRU()
	if ttl > 0 {
		builder = builder.Expiration(ttl)
	}
	return &CachedLoader{reader: reader, cache: builder.Build(), logger: logger}
}

// Cities returns the supported city names
func (c *CachedLoader) Cities() []string {
	return c.reader.Cities()
}

// Load returns the city's trips matching month and day
func (c *CachedLoader) Load(ctx context.Context, city string, month models.MonthSelector, day models.DaySelector) (*models.Dataset, error) {
	name, err := c.reader.Name(city)
	if err != nil {
		return nil, err
	}

	all, err := c.table(ctx, name)
	if err != nil {
		return nil, err
	}
	return loader.Filter(all, models.TripFilter{City: name, Month: month, Day: day}), nil
}

// Purge drops every cached city
func (c *CachedLoader) Purge() {
	c.cache.Purge()
}

func (c *CachedLoader) table(ctx context.Context, city string) (*models.Dataset, error) {
	v, err := c.cache.Get(city)
	if err == nil {
		c.logger.Debug("dataset cache hit", "city", city)
		return v.(*models.Dataset), nil
	}
	if !errors.Is(err, gcache.KeyNotFoundError) {
		return nil, fmt.Errorf("failed to read dataset cache: %w", err)
	}

	ds, err := c.reader.ReadCity(ctx, city)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(city, ds); err != nil {
		return nil, fmt.Errorf("failed to fill dataset cache: %w", err)
	}
	c.logger.Debug("dataset cache filled", "city", city, "rows", ds.Len())
	return ds, nil
}
