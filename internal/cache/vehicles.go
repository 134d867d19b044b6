package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

// VehicleStore is the slice of the vehicle repository the cache sits in
// front of.
type VehicleStore interface {
	GetByID(ctx context.Context, id int64) (*storage.Vehicle, error)
	List(ctx context.Context, filter storage.VehicleFilter) ([]*storage.Vehicle, error)
	Sample(ctx context.Context, limit int) ([]*storage.Vehicle, error)
	ListManufacturers(ctx context.Context) ([]string, error)
}

// CachedVehicles is a read-through cache over the vehicle repository. Cache
// failures are logged and treated as misses; the store stays authoritative.
type CachedVehicles struct {
	store  VehicleStore
	client Client
	ttl    time.Duration
	logger *observability.Logger
}

// NewCachedVehicles wraps the store with the given cache client.
func NewCachedVehicles(store VehicleStore, client Client, ttl time.Duration, logger *observability.Logger) *CachedVehicles {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedVehicles{
		store:  store,
		client: client,
		ttl:    ttl,
		logger: logger.WithOperation("vehicle_cache"),
	}
}

// GetByID returns the cached vehicle or reads through to the store.
func (c *CachedVehicles) GetByID(ctx context.Context, id int64) (*storage.Vehicle, error) {
	key := VehicleCacheKey(strconv.FormatInt(id, 10))

	if data, err := c.client.Get(ctx, key); err == nil {
		var v storage.Vehicle
		if err := json.Unmarshal(data, &v); err == nil {
			return &v, nil
		}
	} else if !errors.Is(err, ErrCacheMiss) {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache read failed")
	}

	v, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, v)
	return v, nil
}

// List returns the cached listing for the filter or reads through.
func (c *CachedVehicles) List(ctx context.Context, filter storage.VehicleFilter) ([]*storage.Vehicle, error) {
	// Only unbounded listings are cached; limits vary per caller.
	if filter.Limit > 0 {
		return c.store.List(ctx, filter)
	}

	key := VehicleListCacheKey(filter.Query, filter.Manufacturer)
	if data, err := c.client.Get(ctx, key); err == nil {
		var vehicles []*storage.Vehicle
		if err := json.Unmarshal(data, &vehicles); err == nil {
			return vehicles, nil
		}
	}

	vehicles, err := c.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, vehicles)
	return vehicles, nil
}

// Sample delegates to the store; the inventory sample is cheap and small.
func (c *CachedVehicles) Sample(ctx context.Context, limit int) ([]*storage.Vehicle, error) {
	return c.store.Sample(ctx, limit)
}

// ListManufacturers returns the cached manufacturer list or reads through.
func (c *CachedVehicles) ListManufacturers(ctx context.Context) ([]string, error) {
	key := CacheKey("manufacturers")
	if data, err := c.client.Get(ctx, key); err == nil {
		var names []string
		if err := json.Unmarshal(data, &names); err == nil {
			return names, nil
		}
	}

	names, err := c.store.ListManufacturers(ctx)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, names)
	return names, nil
}

// Invalidate drops every cached vehicle entry.
func (c *CachedVehicles) Invalidate(ctx context.Context) {
	for _, prefix := range []string{"vehicle", "vehicles", "manufacturers"} {
		if err := c.client.DeleteByPrefix(ctx, prefix); err != nil {
			c.logger.Debug().Err(err).Str("prefix", prefix).Msg("cache invalidation failed")
		}
	}
}

func (c *CachedVehicles) put(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}
