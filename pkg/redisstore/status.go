package redisstore

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatusRecord is the last derived status as mirrored to redis.
// LatencyMs is -1 when the last tick failed.
type StatusRecord struct {
	Status    string    `json:"status"`
	LatencyMs int       `json:"latency_ms"`
	Endpoint  string    `json:"endpoint,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

func (c *Client) StoreStatus(ctx context.Context, rec StatusRecord) error {
	return retry(ctx, 2, func() error {
		return c.rdb.HSet(ctx, statusKey, map[string]any{
			"status":     rec.Status,
			"latency_ms": rec.LatencyMs,
			"endpoint":   rec.Endpoint,
			"checked_at": rec.CheckedAt.Unix(),
		}).Err()
	})
}

func (c *Client) GetStatus(ctx context.Context) (*StatusRecord, error) {
	res, err := c.rdb.HGetAll(ctx, statusKey).Result()
	if err == redis.Nil || (err == nil && len(res) == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	latency, _ := strconv.Atoi(res["latency_ms"])
	checked, _ := strconv.ParseInt(res["checked_at"], 10, 64)

	return &StatusRecord{
		Status:    res["status"],
		LatencyMs: latency,
		Endpoint:  res["endpoint"],
		CheckedAt: time.Unix(checked, 0),
	}, nil
}

func (c *Client) DelStatus(ctx context.Context) error {
	return c.rdb.Del(ctx, statusKey).Err()
}
