package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agencyhub/backend/internal/domain/exchange"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const rateSnapshotKey = "exchange:snapshot:USD"

// RedisRateSnapshotCache shares the latest rate snapshot between
// instances so a fresh snapshot fetched by one is reused by the others.
type RedisRateSnapshotCache struct {
	client redis.Cmdable
	key    string
}

// NewRedisRateSnapshotCache creates the cache on an existing client
func NewRedisRateSnapshotCache(client redis.Cmdable) *RedisRateSnapshotCache {
	return &RedisRateSnapshotCache{client: client, key: rateSnapshotKey}
}

type snapshotPayload struct {
	Rates     map[string]decimal.Decimal `json:"rates"`
	Date      string                     `json:"date"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// Get returns the cached snapshot, or nil when nothing is cached
func (c *RedisRateSnapshotCache) Get(ctx context.Context) (*exchange.Snapshot, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rate snapshot: %w", err)
	}
	return decodeSnapshot(raw)
}

// Set stores the snapshot for ttl
func (c *RedisRateSnapshotCache) Set(ctx context.Context, snap *exchange.Snapshot, ttl time.Duration) error {
	raw, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("write rate snapshot: %w", err)
	}
	return nil
}

func encodeSnapshot(snap *exchange.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, errors.New("nil rate snapshot")
	}
	return json.Marshal(snapshotPayload{
		Rates:     snap.RatesByCode(),
		Date:      snap.Date,
		FetchedAt: snap.FetchedAt.UTC(),
	})
}

func decodeSnapshot(raw []byte) (*exchange.Snapshot, error) {
	var p snapshotPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode rate snapshot: %w", err)
	}
	return exchange.NewSnapshot(p.Rates, p.Date, p.FetchedAt), nil
}
