package redis_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	fleetredis "fleet/internal/adapters/out/redis"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, ttl time.Duration) (*fleetredis.LatestPositionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return fleetredis.NewLatestPositionCache(client, ttl), mr
}

func sample(deliveryID kernel.UUID, lat float64, at time.Time) tracking.Payload {
	heading := 90.0
	return tracking.Payload{DeliveryID: deliveryID, Lat: lat, Lng: 77.59, Heading: &heading, Timestamp: at}
}

func TestLatestPositionCache_Miss(t *testing.T) {
	cache, _ := newCache(t, time.Minute)

	_, ok, err := cache.Get(context.Background(), kernel.NewUUID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLatestPositionCache_PutGet(t *testing.T) {
	ctx := context.Background()
	cache, mr := newCache(t, time.Minute)
	deliveryID := kernel.NewUUID()
	want := sample(deliveryID, 12.97, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))

	require.NoError(t, cache.Put(ctx, want))

	got, ok, err := cache.Get(ctx, deliveryID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.DeliveryID.IsEqual(deliveryID))
	assert.Equal(t, want.Lat, got.Lat)
	assert.Equal(t, want.Lng, got.Lng)
	assert.Equal(t, *want.Heading, *got.Heading)
	assert.Nil(t, got.Speed)
	assert.True(t, want.Timestamp.Equal(got.Timestamp))

	assert.Equal(t, time.Minute, mr.TTL("fleet:latest_position:"+deliveryID.String()))
}

func TestLatestPositionCache_KeepsNewest(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t, time.Minute)
	deliveryID := kernel.NewUUID()
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, cache.Put(ctx, sample(deliveryID, 1, base.Add(time.Minute))))
	require.NoError(t, cache.Put(ctx, sample(deliveryID, 2, base)))

	got, ok, err := cache.Get(ctx, deliveryID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1.0, got.Lat)

	require.NoError(t, cache.Put(ctx, sample(deliveryID, 3, base.Add(2*time.Minute))))
	got, _, err = cache.Get(ctx, deliveryID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Lat)
}

func TestLatestPositionCache_MicrosecondOrdering(t *testing.T) {
	ctx := context.Background()
	cache, mr := newCache(t, time.Minute)
	deliveryID := kernel.NewUUID()
	newer := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC).Add(time.Microsecond)

	require.NoError(t, cache.Put(ctx, sample(deliveryID, 1, newer)))
	require.NoError(t, cache.Put(ctx, sample(deliveryID, 2, newer.Add(-time.Microsecond))))

	got, _, err := cache.Get(ctx, deliveryID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Lat)
	assert.Equal(t, strconv.FormatInt(newer.UnixMicro(), 10), mr.HGet("fleet:latest_position:"+deliveryID.String(), "at"))
}

func TestLatestPositionCache_Expires(t *testing.T) {
	ctx := context.Background()
	cache, mr := newCache(t, time.Minute)
	deliveryID := kernel.NewUUID()

	require.NoError(t, cache.Put(ctx, sample(deliveryID, 1, time.Now())))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, deliveryID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLatestPositionCache_Unreachable(t *testing.T) {
	ctx := context.Background()
	cache, mr := newCache(t, time.Minute)
	mr.Close()

	_, ok, err := cache.Get(ctx, kernel.NewUUID())
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, cache.Put(ctx, sample(kernel.NewUUID(), 1, time.Now())))
}

func TestNewLatestPositionCache_DefaultTTL(t *testing.T) {
	ctx := context.Background()
	cache, mr := newCache(t, 0)
	deliveryID := kernel.NewUUID()

	require.NoError(t, cache.Put(ctx, sample(deliveryID, 1, time.Now())))
	assert.Equal(t, fleetredis.DefaultTTL, mr.TTL("fleet:latest_position:"+deliveryID.String()))
}
