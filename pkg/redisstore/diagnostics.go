package redisstore

import (
	"context"
	"time"
)

// StoreDiagnostics keeps the latest diagnostics payload for ttl.
func (c *Client) StoreDiagnostics(ctx context.Context, payload []byte, ttl time.Duration) error {
	return retry(ctx, 2, func() error {
		return c.rdb.Set(ctx, diagnosticsKey, payload, ttl).Err()
	})
}

// GetDiagnostics returns ErrKeyNotFound when nothing is stored.
func (c *Client) GetDiagnostics(ctx context.Context) ([]byte, error) {
	return c.rdb.Get(ctx, diagnosticsKey).Bytes()
}
