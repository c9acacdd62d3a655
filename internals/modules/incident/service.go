package incident

import (
	"context"
	"sync"
	"time"

	"connwatch/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Repository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, id uuid.UUID, startedAt time.Time, failureCount int) error
	UpdateFailureCount(ctx context.Context, id uuid.UUID, failureCount int) error
	Annotate(ctx context.Context, id uuid.UUID, reachable, suggestions []string) error
	Close(ctx context.Context, id uuid.UUID, endedAt time.Time) error
	GetByID(ctx context.Context, id uuid.UUID) (Incident, error)
	List(ctx context.Context, limit, offset int32) ([]Incident, error)
	DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service tracks the single open incident of this process.
type Service struct {
	repo   Repository
	logger *zerolog.Logger

	mu     sync.Mutex
	openID uuid.UUID
}

func NewService(repo Repository, logger *zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// RecordOutage opens an incident on the first outage event of a streak and
// bumps its failure count on repeats. opened is true only for the first.
func (s *Service) RecordOutage(ctx context.Context, count int, at time.Time) (id uuid.UUID, opened bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.openID != uuid.Nil {
		if err := s.repo.UpdateFailureCount(ctx, s.openID, count); err != nil {
			return s.openID, false, err
		}
		return s.openID, false, nil
	}

	id = uuid.New()
	if err := s.repo.Create(ctx, id, at, count); err != nil {
		return uuid.Nil, false, err
	}
	s.openID = id

	s.logger.Info().Str("incident_id", id.String()).Int("failures", count).Msg("incident opened")
	return id, true, nil
}

// Annotate attaches diagnostics to the open incident.
func (s *Service) Annotate(ctx context.Context, reachable, suggestions []string) error {
	const op string = "service.incident.annotate"

	s.mu.Lock()
	id := s.openID
	s.mu.Unlock()

	if id == uuid.Nil {
		return &apperror.Error{
			Kind:    apperror.NotFound,
			Op:      op,
			Message: "no open incident",
		}
	}
	return s.repo.Annotate(ctx, id, reachable, suggestions)
}

// Resolve closes the open incident, if any. It reports whether one was closed.
func (s *Service) Resolve(ctx context.Context, at time.Time) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.openID == uuid.Nil {
		return uuid.Nil, false, nil
	}

	id := s.openID
	err := s.repo.Close(ctx, id, at)
	if err != nil && !apperror.IsKind(err, apperror.NotFound) {
		return id, false, err
	}
	s.openID = uuid.Nil

	s.logger.Info().Str("incident_id", id.String()).Msg("incident resolved")
	return id, true, nil
}

func (s *Service) OpenIncidentID() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openID, s.openID != uuid.Nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Incident, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int32) ([]Incident, error) {
	const op string = "service.incident.list"

	if limit <= 0 || limit > 100 || offset < 0 {
		return nil, &apperror.Error{
			Kind:    apperror.InvalidInput,
			Op:      op,
			Message: "limit must be 1-100 and offset non-negative",
		}
	}
	return s.repo.List(ctx, limit, offset)
}

// Purge deletes closed incidents that ended before now-retention.
func (s *Service) Purge(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	return s.repo.DeleteEndedBefore(ctx, now.Add(-retention))
}
