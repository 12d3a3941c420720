// Package redis caches the freshest tracking sample per delivery.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/tracking"
	"fleet/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 10 * time.Minute

	keyPrefix = "fleet:latest_position:"
)

var _ ports.LatestPositionCache = (*LatestPositionCache)(nil)

// putIfNewer stores the payload unless the cached one was recorded later.
// KEYS[1] key, ARGV[1] payload, ARGV[2] recorded_at in unix micros, ARGV[3] ttl in ms.
var putIfNewer = goredis.NewScript(`
local current = redis.call("HGET", KEYS[1], "at")
if current and tonumber(current) > tonumber(ARGV[2]) then
	return 0
end
redis.call("HSET", KEYS[1], "at", ARGV[2], "payload", ARGV[1])
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return 1
`)

type LatestPositionCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

func NewLatestPositionCache(client goredis.UniversalClient, ttl time.Duration) *LatestPositionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LatestPositionCache{client: client, ttl: ttl}
}

func key(deliveryID kernel.UUID) string {
	return keyPrefix + deliveryID.String()
}

func (c *LatestPositionCache) Get(ctx context.Context, deliveryID kernel.UUID) (tracking.Payload, bool, error) {
	raw, err := c.client.HGet(ctx, key(deliveryID), "payload").Bytes()
	if errors.Is(err, goredis.Nil) {
		return tracking.Payload{}, false, nil
	}
	if err != nil {
		return tracking.Payload{}, false, fmt.Errorf("redis get latest position: %w", err)
	}

	var payload tracking.Payload
	if err = json.Unmarshal(raw, &payload); err != nil {
		return tracking.Payload{}, false, fmt.Errorf("decode latest position: %w", err)
	}
	return payload, true, nil
}

// Put keeps whichever of the cached and the given sample was recorded last.
func (c *LatestPositionCache) Put(ctx context.Context, payload tracking.Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode latest position: %w", err)
	}

	err = putIfNewer.Run(ctx, c.client,
		[]string{key(payload.DeliveryID)},
		string(raw), payload.Timestamp.UnixMicro(), c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("redis put latest position: %w", err)
	}
	return nil
}

// Ping checks the connection at startup.
func Ping(ctx context.Context, client goredis.UniversalClient) error {
	return client.Ping(ctx).Err()
}
