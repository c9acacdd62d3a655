package incident

import (
	"context"
	"time"

	"connwatch/pkg/apperror"
	"connwatch/pkg/db"
	"connwatch/pkg/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type IncidentRepository struct {
	querier *db.Queries
	logger  *zerolog.Logger
}

func NewRepository(dbExecutor db.DBTX, logger *zerolog.Logger) *IncidentRepository {
	return &IncidentRepository{
		querier: db.New(dbExecutor),
		logger:  logger,
	}
}

func (r *IncidentRepository) EnsureSchema(ctx context.Context) error {
	const op string = "repo.incident.ensure_schema"

	if err := r.querier.CreateSchema(ctx); err != nil {
		return utils.WrapRepoError(op, err, r.logger)
	}
	return nil
}

func (r *IncidentRepository) Create(ctx context.Context, id uuid.UUID, startedAt time.Time, failureCount int) error {
	const op string = "repo.incident.create"

	err := r.querier.CreateOutageIncident(ctx, db.CreateOutageIncidentParams{
		ID:           utils.ToPgUUID(id),
		StartedAt:    utils.ToPgTimestamptz(startedAt),
		FailureCount: int32(failureCount),
	})
	if err == nil {
		return nil
	}

	return utils.WrapRepoError(op, err, r.logger)
}

func (r *IncidentRepository) UpdateFailureCount(ctx context.Context, id uuid.UUID, failureCount int) error {
	const op string = "repo.incident.update_failure_count"

	_, err := r.querier.UpdateOutageFailureCount(ctx, db.UpdateOutageFailureCountParams{
		ID:           utils.ToPgUUID(id),
		FailureCount: int32(failureCount),
	})
	if err == nil {
		return nil
	}

	return utils.WrapRepoError(op, err, r.logger)
}

func (r *IncidentRepository) Annotate(ctx context.Context, id uuid.UUID, reachable, suggestions []string) error {
	const op string = "repo.incident.annotate"

	rowsAffected, err := r.querier.AnnotateOutageIncident(ctx, db.AnnotateOutageIncidentParams{
		ID:          utils.ToPgUUID(id),
		Reachable:   nonNil(reachable),
		Suggestions: nonNil(suggestions),
	})
	if err != nil {
		return utils.WrapRepoError(op, err, r.logger)
	}
	if rowsAffected == 0 {
		return &apperror.Error{
			Kind:    apperror.NotFound,
			Op:      op,
			Message: "incident not found",
		}
	}
	return nil
}

func (r *IncidentRepository) Close(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	const op string = "repo.incident.close"

	rowsAffected, err := r.querier.CloseOutageIncident(ctx, db.CloseOutageIncidentParams{
		ID:      utils.ToPgUUID(id),
		EndedAt: utils.ToPgTimestamptz(endedAt),
	})
	if err != nil {
		return utils.WrapRepoError(op, err, r.logger)
	}
	if rowsAffected == 0 {
		return &apperror.Error{
			Kind:    apperror.NotFound,
			Op:      op,
			Message: "open incident not found",
		}
	}
	return nil
}

func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (Incident, error) {
	const op string = "repo.incident.get"

	row, err := r.querier.GetOutageIncidentByID(ctx, utils.ToPgUUID(id))
	if err != nil {
		return Incident{}, utils.WrapRepoError(op, err, r.logger)
	}
	return toIncident(row), nil
}

func (r *IncidentRepository) List(ctx context.Context, limit, offset int32) ([]Incident, error) {
	const op string = "repo.incident.list"

	rows, err := r.querier.ListOutageIncidents(ctx, db.ListOutageIncidentsParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, utils.WrapRepoError(op, err, r.logger)
	}

	out := make([]Incident, 0, len(rows))
	for i := range rows {
		out = append(out, toIncident(rows[i]))
	}
	return out, nil
}

func (r *IncidentRepository) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const op string = "repo.incident.delete_ended_before"

	n, err := r.querier.DeleteOutageIncidentsBefore(ctx, utils.ToPgTimestamptz(cutoff))
	if err != nil {
		return 0, utils.WrapRepoError(op, err, r.logger)
	}
	return n, nil
}

func toIncident(row db.OutageIncident) Incident {
	inc := Incident{
		ID:           utils.FromPgUUID(row.ID),
		StartedAt:    utils.FromPgTimestamptz(row.StartedAt),
		FailureCount: row.FailureCount,
		Reachable:    nonNil(row.Reachable),
		Suggestions:  nonNil(row.Suggestions),
		CreatedAt:    utils.FromPgTimestamptz(row.CreatedAt),
	}
	if ended := utils.FromPgTimestamptz(row.EndedAt); !ended.IsZero() {
		inc.EndedAt = &ended
	}
	return inc
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
