package monitor

import (
	"time"

	"connwatch/internals/modules/probe"
)

type Status string

const (
	StatusConnected    Status = "connected"
	StatusDegraded     Status = "degraded"
	StatusDisconnected Status = "disconnected"
	StatusUnknown      Status = "unknown"
)

// LatencySample is one successful tick.
type LatencySample struct {
	TimestampMs int64 `json:"timestamp_ms"`
	RoundTripMs int   `json:"round_trip_ms"`
}

type StatusChange struct {
	Status      Status `json:"status"`
	RoundTripMs *int   `json:"round_trip_ms"`
}

// LatencyUpdate is emitted once per tick. RoundTripMs is nil when every
// endpoint failed, which is distinct from a zero-latency success.
type LatencyUpdate struct {
	RoundTripMs *int            `json:"round_trip_ms"`
	Endpoint    string          `json:"endpoint,omitempty"`
	History     []LatencySample `json:"history"`
	Timing      *probe.Timing   `json:"timing,omitempty"`
}

type OutageDetected struct {
	Count int       `json:"count"`
	At    time.Time `json:"at"`
}

// Snapshot is a point-in-time view of the monitor for API consumers.
type Snapshot struct {
	Running             bool          `json:"running"`
	Interval            time.Duration `json:"-"`
	IntervalMs          int64         `json:"interval_ms"`
	Status              Status        `json:"status"`
	LatestRoundTripMs   *int          `json:"latest_round_trip_ms"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	HistoryLength       int           `json:"history_length"`
}
