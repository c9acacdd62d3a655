package diagnostics

import (
	"time"

	"connwatch/internals/modules/probe"
)

// Result of one diagnostics sweep. Reachable keeps configured endpoint
// order; Suggestions is deduplicated and ordered by rule.
type Result struct {
	RunID       string         `json:"run_id"`
	Reachable   []string       `json:"reachable"`
	Timing      *probe.Timing  `json:"timing,omitempty"`
	Suggestions []string       `json:"suggestions"`
	Probes      []probe.Result `json:"probes,omitempty"`
	Failed      bool           `json:"failed"`
	StartedAt   time.Time      `json:"started_at"`
	DurationMs  int64          `json:"duration_ms"`
}

// Thresholds at or above which a phase is reported as slow.
type Thresholds struct {
	DNSSlowMs     int
	ConnectSlowMs int
}

var DefaultThresholds = Thresholds{
	DNSSlowMs:     100,
	ConnectSlowMs: 200,
}

const (
	SuggestPowerCycle   = "Restart your modem and router, then wait a minute for them to reconnect."
	SuggestOtherDevices = "Check whether other devices on the same network can get online."
	SuggestContactISP   = "If nothing can connect, contact your internet service provider to check for an outage."

	SuggestServiceDown = "Some services responded while others did not; a specific service may be down rather than your connection."
	SuggestRetryLater  = "Try the unreachable services again in a few minutes or check their status pages."

	SuggestChangeDNS = "Name resolution is slow; consider switching to a faster DNS resolver such as 1.1.1.1 or 8.8.8.8."
	SuggestFirewall  = "Connections are slow to establish; check firewall or VPN settings and local network congestion."

	SuggestCouldNotComplete = "Diagnostics could not complete. Please try again."
)
