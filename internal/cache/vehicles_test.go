package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

type countingStore struct {
	vehicle *storage.Vehicle
	getByID int
	list    int
}

func (s *countingStore) GetByID(ctx context.Context, id int64) (*storage.Vehicle, error) {
	s.getByID++
	if s.vehicle == nil || s.vehicle.ID != id {
		return nil, storage.ErrNotFound
	}
	return s.vehicle, nil
}

func (s *countingStore) List(ctx context.Context, filter storage.VehicleFilter) ([]*storage.Vehicle, error) {
	s.list++
	return []*storage.Vehicle{s.vehicle}, nil
}

func (s *countingStore) Sample(ctx context.Context, limit int) ([]*storage.Vehicle, error) {
	return []*storage.Vehicle{s.vehicle}, nil
}

func (s *countingStore) ListManufacturers(ctx context.Context) ([]string, error) {
	return []string{s.vehicle.Manufacturer}, nil
}

func cacheTestLogger() *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level: "error", Format: "json", ServiceName: "chat-engine-test",
	})
}

func newRedisBackedCache(t *testing.T, store VehicleStore, ttl time.Duration) *CachedVehicles {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewCachedVehicles(store, client, ttl, cacheTestLogger())
}

func TestCachedVehicles_GetByID_ReadThrough(t *testing.T) {
	store := &countingStore{vehicle: &storage.Vehicle{ID: 1, Manufacturer: "Toyota", Model: "Camry", Year: 2023}}
	cached := newRedisBackedCache(t, store, time.Minute)

	first, err := cached.GetByID(context.Background(), 1)
	require.NoError(t, err)
	second, err := cached.GetByID(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, first.Model, second.Model)
	assert.Equal(t, 1, store.getByID)
}

func TestCachedVehicles_GetByID_MissPassesThroughNotFound(t *testing.T) {
	store := &countingStore{vehicle: &storage.Vehicle{ID: 1}}
	cached := newRedisBackedCache(t, store, time.Minute)

	_, err := cached.GetByID(context.Background(), 42)

	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCachedVehicles_List_CachesUnboundedOnly(t *testing.T) {
	store := &countingStore{vehicle: &storage.Vehicle{ID: 1, Manufacturer: "Toyota"}}
	cached := newRedisBackedCache(t, store, time.Minute)

	cached.List(context.Background(), storage.VehicleFilter{})
	cached.List(context.Background(), storage.VehicleFilter{})
	assert.Equal(t, 1, store.list)

	cached.List(context.Background(), storage.VehicleFilter{Limit: 5})
	assert.Equal(t, 2, store.list)
}

func TestCachedVehicles_TTLExpiry(t *testing.T) {
	store := &countingStore{vehicle: &storage.Vehicle{ID: 1, Manufacturer: "Toyota"}}
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()
	cached := NewCachedVehicles(store, client, time.Second, cacheTestLogger())

	_, err = cached.GetByID(context.Background(), 1)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = cached.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, store.getByID)
}

func TestCachedVehicles_Invalidate(t *testing.T) {
	store := &countingStore{vehicle: &storage.Vehicle{ID: 1, Manufacturer: "Toyota"}}
	cached := newRedisBackedCache(t, store, time.Minute)

	_, err := cached.GetByID(context.Background(), 1)
	require.NoError(t, err)

	cached.Invalidate(context.Background())

	_, err = cached.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, store.getByID)
}

func TestMemoryClient_SetGetDelete(t *testing.T) {
	c := NewMemoryClient(10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_Expiry(t *testing.T) {
	c := NewMemoryClient(10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), -time.Second))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "vehicle:7", VehicleCacheKey("7"))
	assert.Equal(t, "vehicles:camry:toyota", VehicleListCacheKey("camry", "toyota"))
}
