package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const retryBaseDelay = 50 * time.Millisecond

// retry runs fn up to attempts times, doubling the pause between tries.
// redis.Nil is an answer, not a failure, and is returned at once.
func retry(ctx context.Context, attempts int, fn func() error) error {
	var err error
	delay := retryBaseDelay

	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || errors.Is(err, redis.Nil) {
			return err
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return err
}
