package alert

import "time"

type Kind string

const (
	KindOutage   Kind = "outage"
	KindRecovery Kind = "recovery"
)

type AlertEvent struct {
	Kind  Kind      `json:"kind"`
	Count int       `json:"failure_count,omitempty"`
	At    time.Time `json:"at"`
}

type diagJob struct {
	streak bool
}
