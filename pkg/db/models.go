package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type OutageIncident struct {
	ID           pgtype.UUID
	StartedAt    pgtype.Timestamptz
	EndedAt      pgtype.Timestamptz
	FailureCount int32
	Reachable    []string
	Suggestions  []string
	CreatedAt    pgtype.Timestamptz
}
