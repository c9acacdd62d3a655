package redisstore

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type OutageRecord struct {
	FailureCount   int       `json:"failure_count"`
	FirstFailureAt time.Time `json:"first_failure_at"`
	LastFailureAt  time.Time `json:"last_failure_at"`
	IncidentID     string    `json:"incident_id,omitempty"`
	Diagnosed      bool      `json:"diagnosed"`
}

// RecordOutage mirrors the current streak. It reports true when this call
// opened the streak.
func (c *Client) RecordOutage(ctx context.Context, count int, at time.Time) (bool, error) {
	var opened bool

	err := retry(ctx, 3, func() error {
		var err error

		opened, err = c.rdb.HSetNX(ctx, outageKey, "first_failure_at", at.Unix()).Result()
		if err != nil {
			return err
		}

		fields := map[string]any{
			"failure_count":   count,
			"last_failure_at": at.Unix(),
		}
		if opened {
			fields["diagnosed"] = false
		}
		return c.rdb.HSet(ctx, outageKey, fields).Err()
	})

	return opened, err
}

func (c *Client) SetOutageIncident(ctx context.Context, incidentID string) error {
	return retry(ctx, 2, func() error {
		return c.rdb.HSet(ctx, outageKey, "incident_id", incidentID).Err()
	})
}

// ClaimOutageDiagnosis flips the diagnosed flag and reports whether this
// caller was the one to flip it.
func (c *Client) ClaimOutageDiagnosis(ctx context.Context) (bool, error) {
	var claimed bool

	err := retry(ctx, 2, func() error {
		prev, err := c.rdb.HGet(ctx, outageKey, "diagnosed").Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if prev == "true" || prev == "1" {
			claimed = false
			return nil
		}
		if err := c.rdb.HSet(ctx, outageKey, "diagnosed", true).Err(); err != nil {
			return err
		}
		claimed = true
		return nil
	})

	return claimed, err
}

func (c *Client) ClearOutage(ctx context.Context) error {
	return retry(ctx, 2, func() error {
		return c.rdb.Del(ctx, outageKey).Err()
	})
}

func (c *Client) GetOutage(ctx context.Context) (*OutageRecord, error) {
	resp, err := c.rdb.HGetAll(ctx, outageKey).Result()
	if err == redis.Nil || (err == nil && len(resp) == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	count, _ := strconv.Atoi(resp["failure_count"])
	first, _ := strconv.ParseInt(resp["first_failure_at"], 10, 64)
	last, _ := strconv.ParseInt(resp["last_failure_at"], 10, 64)
	diagnosed, _ := strconv.ParseBool(resp["diagnosed"])

	return &OutageRecord{
		FailureCount:   count,
		FirstFailureAt: time.Unix(first, 0),
		LastFailureAt:  time.Unix(last, 0),
		IncidentID:     resp["incident_id"],
		Diagnosed:      diagnosed,
	}, nil
}
