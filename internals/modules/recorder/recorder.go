package recorder

import (
	"context"
	"sync"
	"time"

	"connwatch/internals/modules/monitor"
	"connwatch/pkg/rabbitmq"
	"connwatch/pkg/redisstore"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

type StatusStore interface {
	StoreStatus(ctx context.Context, rec redisstore.StatusRecord) error
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// StatusChanged is the payload of a status.changed event.
type StatusChanged struct {
	From        monitor.Status `json:"from"`
	To          monitor.Status `json:"to"`
	RoundTripMs *int           `json:"round_trip_ms"`
	Endpoint    string         `json:"endpoint,omitempty"`
	At          time.Time      `json:"at"`
}

// Recorder mirrors every derived status to the store and publishes
// transitions. Work happens on its own goroutine so the poll cycle never
// waits on redis or the broker.
type Recorder struct {
	store     StatusStore
	publisher EventPublisher
	clock     clockwork.Clock
	logger    *zerolog.Logger

	queue chan StatusChanged
	wg    sync.WaitGroup

	mu           sync.Mutex
	closed       bool
	lastEndpoint string
	// owned by the worker
	lastStatus monitor.Status
}

// New accepts nil store or publisher; the recorder then only skips that side.
func New(store StatusStore, publisher EventPublisher, clock clockwork.Clock, logger *zerolog.Logger) *Recorder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Recorder{
		store:      store,
		publisher:  publisher,
		clock:      clock,
		logger:     logger,
		queue:      make(chan StatusChanged, 128),
		lastStatus: monitor.StatusUnknown,
	}
}

func (r *Recorder) Start() {
	r.wg.Add(1)
	go r.loop()
}

// OnLatency remembers which endpoint answered last.
func (r *Recorder) OnLatency(u monitor.LatencyUpdate) {
	r.mu.Lock()
	r.lastEndpoint = u.Endpoint
	r.mu.Unlock()
}

func (r *Recorder) OnStatus(s monitor.StatusChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	ev := StatusChanged{
		To:          s.Status,
		RoundTripMs: s.RoundTripMs,
		Endpoint:    r.lastEndpoint,
		At:          r.clock.Now(),
	}
	select {
	case r.queue <- ev:
	default:
		r.logger.Warn().Str("status", string(s.Status)).Msg("recorder queue full, dropping status")
	}
}

func (r *Recorder) loop() {
	defer r.wg.Done()

	for ev := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		r.record(ctx, ev)
		cancel()
	}
}

func (r *Recorder) record(ctx context.Context, ev StatusChanged) {
	if r.store != nil {
		latency := -1
		if ev.RoundTripMs != nil {
			latency = *ev.RoundTripMs
		}
		err := r.store.StoreStatus(ctx, redisstore.StatusRecord{
			Status:    string(ev.To),
			LatencyMs: latency,
			Endpoint:  ev.Endpoint,
			CheckedAt: ev.At,
		})
		if err != nil {
			r.logger.Warn().Err(err).Msg("failed to mirror status")
		}
	}

	if ev.To == r.lastStatus {
		return
	}
	ev.From = r.lastStatus
	r.lastStatus = ev.To

	r.logger.Info().
		Str("from", string(ev.From)).
		Str("to", string(ev.To)).
		Msg("status changed")

	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, rabbitmq.EventStatusChanged, ev); err != nil {
		r.logger.Warn().Err(err).Msg("failed to publish status change")
	}
}

// Close drains queued statuses and stops the worker.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}
