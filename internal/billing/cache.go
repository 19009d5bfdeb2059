// AngelaMos | 2026
// cache.go

package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

const (
	keyPrefix            = "bill:"
	currentBillKeyPrefix = keyPrefix + "current:"
	versionKeyPrefix     = keyPrefix + "version:"

	flushBatch = 100
)

// setIfVersion writes KEYS[1] only while KEYS[2] still holds the version
// the caller read before going to the store. A missing version counts
// as zero.
var setIfVersion = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// Cache holds the current bill per consumer. A nil *Cache is a valid
// disabled cache.
//
// Every invalidation bumps a per-consumer version. A read-through write
// carries the version seen before the store was queried and is dropped
// when an invalidation happened in between.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewCache(client redis.Cmdable, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

func currentBillKey(consumerID int64) string {
	return fmt.Sprintf("%s%d", currentBillKeyPrefix, consumerID)
}

func versionKey(consumerID int64) string {
	return fmt.Sprintf("%s%d", versionKeyPrefix, consumerID)
}

func (c *Cache) Get(ctx context.Context, consumerID int64) (*Bill, bool, error) {
	if c == nil {
		return nil, false, nil
	}

	var b Bill
	found, err := core.GetJSON(ctx, c.client, currentBillKey(consumerID), &b)
	if err != nil || !found {
		return nil, false, err
	}

	return &b, true, nil
}

// Version returns the invalidation counter of consumerID, zero when the
// consumer was never invalidated.
func (c *Cache) Version(ctx context.Context, consumerID int64) (int64, error) {
	if c == nil {
		return 0, nil
	}

	key := versionKey(consumerID)
	v, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// Set stores b unless the consumer was invalidated after version was
// read. It reports whether the bill was written.
func (c *Cache) Set(ctx context.Context, b *Bill, version int64) (bool, error) {
	if c == nil {
		return false, nil
	}

	key := currentBillKey(b.ConsumerID)
	raw, err := json.Marshal(b)
	if err != nil {
		return false, fmt.Errorf("encode cached %s: %w", key, err)
	}

	written, err := setIfVersion.Run(ctx, c.client,
		[]string{key, versionKey(b.ConsumerID)},
		version, raw, c.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("redis set %s: %w", key, err)
	}

	return written == 1, nil
}

// Invalidate drops the cached bill of every consumer and bumps their
// versions so in-flight reads do not write the old bill back.
func (c *Cache) Invalidate(ctx context.Context, consumerIDs ...int64) error {
	if c == nil || len(consumerIDs) == 0 {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range consumerIDs {
			vkey := versionKey(id)
			pipe.Incr(ctx, vkey)
			if c.ttl > 0 {
				pipe.Expire(ctx, vkey, c.ttl)
			}
			pipe.Del(ctx, currentBillKey(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate bills %v: %w", consumerIDs, err)
	}
	return nil
}

// Flush removes every bill key. It returns the number of keys deleted.
func (c *Cache) Flush(ctx context.Context) (int, error) {
	if c == nil {
		return 0, nil
	}

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", flushBatch).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan bill keys: %w", err)
		}

		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("delete bill keys: %w", err)
			}
			deleted += int(n)
		}

		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}
