package monitor

import (
	"connwatch/internals/modules/events"

	"github.com/rs/zerolog"
)

// Bus carries the monitor's three event kinds.
type Bus struct {
	StatusChanges  *events.Topic[StatusChange]
	LatencyUpdates *events.Topic[LatencyUpdate]
	Outages        *events.Topic[OutageDetected]
}

func NewBus(logger *zerolog.Logger) *Bus {
	return &Bus{
		StatusChanges:  events.NewTopic[StatusChange]("status_change", logger),
		LatencyUpdates: events.NewTopic[LatencyUpdate]("latency_update", logger),
		Outages:        events.NewTopic[OutageDetected]("outage_detected", logger),
	}
}
