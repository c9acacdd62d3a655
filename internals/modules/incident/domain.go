package incident

import (
	"time"

	"github.com/google/uuid"
)

// Incident is one outage streak: opened on the first outage event, closed
// on the first successful tick after it.
type Incident struct {
	ID           uuid.UUID  `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	FailureCount int32      `json:"failure_count"`
	Reachable    []string   `json:"reachable"`
	Suggestions  []string   `json:"suggestions"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (i Incident) Open() bool {
	return i.EndedAt == nil
}
