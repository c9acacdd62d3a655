package incident

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	DefaultRetention      = 30 * 24 * time.Hour
	DefaultRetentionEvery = time.Hour
)

type Purger interface {
	Purge(ctx context.Context, now time.Time, retention time.Duration) (int64, error)
}

// RetentionJob periodically deletes closed incidents past retention.
type RetentionJob struct {
	scheduler gocron.Scheduler
	clock     clockwork.Clock
	purger    Purger
	retention time.Duration
	logger    *zerolog.Logger
}

func NewRetentionJob(purger Purger, retention, every time.Duration, clock clockwork.Clock, logger *zerolog.Logger) (*RetentionJob, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if every <= 0 {
		every = DefaultRetentionEvery
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, err
	}

	j := &RetentionJob{
		scheduler: s,
		clock:     clock,
		purger:    purger,
		retention: retention,
		logger:    logger,
	}

	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(j.run),
		gocron.WithName("incident-retention"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	return j, nil
}

func (j *RetentionJob) Start() {
	j.scheduler.Start()
}

func (j *RetentionJob) Shutdown() error {
	return j.scheduler.Shutdown()
}

func (j *RetentionJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := j.purger.Purge(ctx, j.clock.Now(), j.retention)
	if err != nil {
		j.logger.Error().Err(err).Msg("incident retention cleanup failed")
		return
	}
	j.logger.Info().Int64("deleted", deleted).Dur("retention", j.retention).Msg("incident retention cleanup done")
}
