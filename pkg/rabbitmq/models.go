package rabbitmq

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published on the exchange. The routing key is the configured
// events key followed by the type.
const (
	EventStatusChanged        = "status.changed"
	EventOutageDetected       = "outage.detected"
	EventOutageRecovered      = "outage.recovered"
	EventDiagnosticsCompleted = "diagnostics.completed"
)

// Command types accepted on the command queue.
const (
	CommandMonitorStart   = "monitor.start"
	CommandMonitorStop    = "monitor.stop"
	CommandDiagnosticsRun = "diagnostics.run"
)

type EventPayload struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

func NewEvent(eventType string, at time.Time, payload any) (EventPayload, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return EventPayload{}, err
	}
	return EventPayload{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: at.UTC(),
		Payload:    raw,
	}, nil
}

type StartCommand struct {
	IntervalMs int64 `json:"interval_ms"`
}
