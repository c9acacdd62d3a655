package alert

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"connwatch/internals/modules/diagnostics"
	"connwatch/internals/modules/events"
	"connwatch/internals/modules/monitor"
	"connwatch/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

type DiagnosticsRunner interface {
	Run(ctx context.Context) diagnostics.Result
}

type IncidentRecorder interface {
	RecordOutage(ctx context.Context, count int, at time.Time) (uuid.UUID, bool, error)
	Annotate(ctx context.Context, reachable, suggestions []string) error
	Resolve(ctx context.Context, at time.Time) (uuid.UUID, bool, error)
}

type OutageStore interface {
	RecordOutage(ctx context.Context, count int, at time.Time) (bool, error)
	SetOutageIncident(ctx context.Context, incidentID string) error
	ClaimOutageDiagnosis(ctx context.Context) (bool, error)
	ClearOutage(ctx context.Context) error
	StoreDiagnostics(ctx context.Context, payload []byte, ttl time.Duration) error
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

type Options struct {
	WorkerCount    int
	QueueSize      int
	RunOnOutage    bool
	DiagnosticsTTL time.Duration
	// Incidents, Store and Publisher are optional.
	Incidents IncidentRecorder
	Store     OutageStore
	Publisher EventPublisher
	Results   *events.Topic[diagnostics.Result]
	Clock     clockwork.Clock
}

// AlertService turns outage and recovery signals from the poll cycle into
// incidents, mirrored state and at most one diagnostics run per streak.
// Signals are handled in order by a single dispatcher; diagnostics runs go
// to a worker pool.
type AlertService struct {
	// lifecycle
	workerCount int
	workerWG    sync.WaitGroup
	dispatchWG  sync.WaitGroup
	closeMu     sync.RWMutex
	closed      bool

	// channels
	alertChan chan AlertEvent
	diagChan  chan diagJob

	// streak is true between the first outage event and the recovery
	// that ends it, as seen by the poll goroutine.
	streak atomic.Bool
	// dispatcher-owned
	streakOpen bool

	diag   DiagnosticsRunner
	opts   Options
	clock  clockwork.Clock
	logger *zerolog.Logger
}

func NewAlertService(diag DiagnosticsRunner, opts Options, logger *zerolog.Logger) *AlertService {
	if opts.WorkerCount < 1 {
		opts.WorkerCount = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 64
	}
	if opts.DiagnosticsTTL <= 0 {
		opts.DiagnosticsTTL = 24 * time.Hour
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	return &AlertService{
		workerCount: opts.WorkerCount,
		alertChan:   make(chan AlertEvent, opts.QueueSize),
		diagChan:    make(chan diagJob, opts.WorkerCount),
		diag:        diag,
		opts:        opts,
		clock:       opts.Clock,
		logger:      logger,
	}
}

// Start starts the dispatcher and the diagnostics workers.
func (s *AlertService) Start() {
	s.dispatchWG.Add(1)
	go s.dispatch()

	s.workerWG.Add(s.workerCount)
	for range s.workerCount {
		go s.handleDiagnostics()
	}
}

// OnOutage is registered on the monitor's outage topic. It never blocks the
// poll goroutine.
func (s *AlertService) OnOutage(o monitor.OutageDetected) {
	s.streak.Store(true)
	s.enqueue(AlertEvent{Kind: KindOutage, Count: o.Count, At: o.At})
}

// OnLatency is registered on the latency topic; the first success after an
// outage streak ends it.
func (s *AlertService) OnLatency(u monitor.LatencyUpdate) {
	if u.RoundTripMs == nil {
		return
	}
	if s.streak.CompareAndSwap(true, false) {
		s.enqueue(AlertEvent{Kind: KindRecovery, At: s.clock.Now()})
	}
}

func (s *AlertService) enqueue(ev AlertEvent) {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.alertChan <- ev:
	default:
		s.logger.Warn().Str("kind", string(ev.Kind)).Msg("alert queue full, dropping event")
	}
}

// RunDiagnostics runs one sweep now and records its result. It is not tied
// to any streak.
func (s *AlertService) RunDiagnostics(ctx context.Context) diagnostics.Result {
	res := s.diag.Run(ctx)
	s.complete(ctx, res, false)
	return res
}

func (s *AlertService) dispatch() {
	defer s.dispatchWG.Done()

	for ev := range s.alertChan {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		switch ev.Kind {
		case KindOutage:
			s.handleOutage(ctx, ev)
		case KindRecovery:
			s.handleRecovery(ctx, ev)
		}
		cancel()
	}
}

func (s *AlertService) handleOutage(ctx context.Context, ev AlertEvent) {
	first := !s.streakOpen
	s.streakOpen = true

	log := s.logger.With().Int("failures", ev.Count).Bool("first", first).Logger()

	if s.opts.Incidents != nil {
		id, opened, err := s.opts.Incidents.RecordOutage(ctx, ev.Count, ev.At)
		if err != nil {
			log.Error().Err(err).Msg("failed to record incident")
		} else if opened && s.opts.Store != nil {
			if err := s.opts.Store.SetOutageIncident(ctx, id.String()); err != nil {
				log.Warn().Err(err).Msg("failed to mirror incident id")
			}
		}
	}

	if s.opts.Store != nil {
		if _, err := s.opts.Store.RecordOutage(ctx, ev.Count, ev.At); err != nil {
			log.Warn().Err(err).Msg("failed to mirror outage")
		}
	}

	s.publish(ctx, rabbitmq.EventOutageDetected, ev)

	if !first || !s.opts.RunOnOutage {
		return
	}

	if s.opts.Store != nil {
		claimed, err := s.opts.Store.ClaimOutageDiagnosis(ctx)
		if err == nil && !claimed {
			log.Debug().Msg("streak already diagnosed")
			return
		}
	}

	select {
	case s.diagChan <- diagJob{streak: true}:
	default:
		log.Warn().Msg("diagnostics workers busy, skipping run")
	}
}

func (s *AlertService) handleRecovery(ctx context.Context, ev AlertEvent) {
	if !s.streakOpen {
		return
	}
	s.streakOpen = false

	if s.opts.Incidents != nil {
		if _, _, err := s.opts.Incidents.Resolve(ctx, ev.At); err != nil {
			s.logger.Error().Err(err).Msg("failed to resolve incident")
		}
	}
	if s.opts.Store != nil {
		if err := s.opts.Store.ClearOutage(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to clear outage mirror")
		}
	}

	s.publish(ctx, rabbitmq.EventOutageRecovered, ev)
	s.logger.Info().Msg("connectivity recovered")
}

func (s *AlertService) handleDiagnostics() {
	defer s.workerWG.Done()

	for job := range s.diagChan {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		res := s.diag.Run(ctx)
		s.complete(ctx, res, job.streak)
		cancel()
	}
}

func (s *AlertService) complete(ctx context.Context, res diagnostics.Result, streak bool) {
	if s.opts.Results != nil {
		s.opts.Results.Emit(res)
	}

	if s.opts.Store != nil {
		payload, err := json.Marshal(res)
		if err == nil {
			err = s.opts.Store.StoreDiagnostics(ctx, payload, s.opts.DiagnosticsTTL)
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to store diagnostics")
		}
	}

	if streak && s.opts.Incidents != nil {
		if err := s.opts.Incidents.Annotate(ctx, res.Reachable, res.Suggestions); err != nil {
			s.logger.Warn().Err(err).Msg("failed to annotate incident")
		}
	}

	s.publish(ctx, rabbitmq.EventDiagnosticsCompleted, res)
}

func (s *AlertService) publish(ctx context.Context, eventType string, payload any) {
	if s.opts.Publisher == nil {
		return
	}
	if err := s.opts.Publisher.Publish(ctx, eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

// Close stops accepting events and waits for in-flight work.
func (s *AlertService) Close() {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return
	}
	s.closed = true
	close(s.alertChan)
	s.closeMu.Unlock()

	s.dispatchWG.Wait()
	close(s.diagChan)
	s.workerWG.Wait()
}
