package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createSchema = `
CREATE TABLE IF NOT EXISTS outage_incidents (
    id            UUID PRIMARY KEY,
    started_at    TIMESTAMPTZ NOT NULL,
    ended_at      TIMESTAMPTZ,
    failure_count INT NOT NULL DEFAULT 0,
    reachable     TEXT[] NOT NULL DEFAULT '{}',
    suggestions   TEXT[] NOT NULL DEFAULT '{}',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS outage_incidents_started_at_idx ON outage_incidents (started_at DESC);
`

func (q *Queries) CreateSchema(ctx context.Context) error {
	_, err := q.db.Exec(ctx, createSchema)
	return err
}

const createOutageIncident = `-- name: CreateOutageIncident :exec
INSERT INTO outage_incidents (id, started_at, failure_count)
VALUES ($1, $2, $3)
`

type CreateOutageIncidentParams struct {
	ID           pgtype.UUID
	StartedAt    pgtype.Timestamptz
	FailureCount int32
}

func (q *Queries) CreateOutageIncident(ctx context.Context, arg CreateOutageIncidentParams) error {
	_, err := q.db.Exec(ctx, createOutageIncident, arg.ID, arg.StartedAt, arg.FailureCount)
	return err
}

const updateOutageFailureCount = `-- name: UpdateOutageFailureCount :execrows
UPDATE outage_incidents
SET failure_count = GREATEST(failure_count, $2)
WHERE id = $1 AND ended_at IS NULL
`

type UpdateOutageFailureCountParams struct {
	ID           pgtype.UUID
	FailureCount int32
}

func (q *Queries) UpdateOutageFailureCount(ctx context.Context, arg UpdateOutageFailureCountParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateOutageFailureCount, arg.ID, arg.FailureCount)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const annotateOutageIncident = `-- name: AnnotateOutageIncident :execrows
UPDATE outage_incidents
SET reachable = $2, suggestions = $3
WHERE id = $1
`

type AnnotateOutageIncidentParams struct {
	ID          pgtype.UUID
	Reachable   []string
	Suggestions []string
}

func (q *Queries) AnnotateOutageIncident(ctx context.Context, arg AnnotateOutageIncidentParams) (int64, error) {
	result, err := q.db.Exec(ctx, annotateOutageIncident, arg.ID, arg.Reachable, arg.Suggestions)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const closeOutageIncident = `-- name: CloseOutageIncident :execrows
UPDATE outage_incidents
SET ended_at = $2
WHERE id = $1 AND ended_at IS NULL
`

type CloseOutageIncidentParams struct {
	ID      pgtype.UUID
	EndedAt pgtype.Timestamptz
}

func (q *Queries) CloseOutageIncident(ctx context.Context, arg CloseOutageIncidentParams) (int64, error) {
	result, err := q.db.Exec(ctx, closeOutageIncident, arg.ID, arg.EndedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getOutageIncidentByID = `-- name: GetOutageIncidentByID :one
SELECT id, started_at, ended_at, failure_count, reachable, suggestions, created_at
FROM outage_incidents
WHERE id = $1
`

func (q *Queries) GetOutageIncidentByID(ctx context.Context, id pgtype.UUID) (OutageIncident, error) {
	row := q.db.QueryRow(ctx, getOutageIncidentByID, id)
	var i OutageIncident
	err := row.Scan(
		&i.ID,
		&i.StartedAt,
		&i.EndedAt,
		&i.FailureCount,
		&i.Reachable,
		&i.Suggestions,
		&i.CreatedAt,
	)
	return i, err
}

const listOutageIncidents = `-- name: ListOutageIncidents :many
SELECT id, started_at, ended_at, failure_count, reachable, suggestions, created_at
FROM outage_incidents
ORDER BY started_at DESC
LIMIT $1 OFFSET $2
`

type ListOutageIncidentsParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListOutageIncidents(ctx context.Context, arg ListOutageIncidentsParams) ([]OutageIncident, error) {
	rows, err := q.db.Query(ctx, listOutageIncidents, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OutageIncident
	for rows.Next() {
		var i OutageIncident
		if err := rows.Scan(
			&i.ID,
			&i.StartedAt,
			&i.EndedAt,
			&i.FailureCount,
			&i.Reachable,
			&i.Suggestions,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteOutageIncidentsBefore = `-- name: DeleteOutageIncidentsBefore :execrows
DELETE FROM outage_incidents
WHERE ended_at IS NOT NULL AND ended_at < $1
`

func (q *Queries) DeleteOutageIncidentsBefore(ctx context.Context, cutoff pgtype.Timestamptz) (int64, error) {
	result, err := q.db.Exec(ctx, deleteOutageIncidentsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
