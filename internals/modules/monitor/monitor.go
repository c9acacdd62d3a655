package monitor

import (
	"context"
	"sync"
	"time"

	"connwatch/internals/modules/events"
	"connwatch/internals/modules/probe"
	"connwatch/pkg/apperror"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = 5 * time.Second

type Prober interface {
	Probe(ctx context.Context, ep probe.Endpoint, timeout time.Duration) probe.Result
}

type Options struct {
	Endpoints       []probe.Endpoint
	ProbeTimeout    time.Duration
	HistoryCapacity int
	OutageThreshold int
	Classifier      Classifier
	Clock           clockwork.Clock
	// OutageHandler, when set, is subscribed to outage events for the
	// lifetime of each run.
	OutageHandler func(OutageDetected)
}

// State is everything a run mutates. It is reset on every Start.
type State struct {
	failures outageTracker
	history  *History
	latest   *int

	running    bool
	interval   time.Duration
	generation uint64
	// startedAt anchors sample timestamps; elapsed time is measured on the
	// clock's monotonic reading.
	startedAt time.Time
	ticker     clockwork.Ticker
	cancel     context.CancelFunc

	statusSub events.Subscription
	outageSub events.Subscription
}

// Monitor drives the poll cycle over an ordered fallback chain of endpoints.
type Monitor struct {
	prober Prober
	bus    *Bus
	opts   Options
	clock  clockwork.Clock
	logger *zerolog.Logger

	// statusMu serialises derived status emission with Start and Stop so
	// no status from a halted run is emitted once Stop returns. StatusChanges
	// handlers must not call Start or Stop. Lock order: statusMu, then mu.
	statusMu sync.Mutex

	mu    sync.Mutex
	state State
}

func New(prober Prober, bus *Bus, opts Options, logger *zerolog.Logger) *Monitor {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = probe.DefaultTimeout
	}
	if opts.Classifier.Window <= 0 {
		opts.Classifier = DefaultClassifier
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	return &Monitor{
		prober: prober,
		bus:    bus,
		opts:   opts,
		clock:  opts.Clock,
		logger: logger,
		state: State{
			failures: newOutageTracker(opts.OutageThreshold),
			history:  NewHistory(opts.HistoryCapacity),
		},
	}
}

func (m *Monitor) Bus() *Bus {
	return m.bus
}

// Start (re)starts monitoring at the given cadence. Any previous run is
// halted before state is reset, so two runs never share history.
func (m *Monitor) Start(interval time.Duration) error {
	const op string = "service.monitor.start"

	if interval <= 0 {
		return &apperror.Error{
			Kind:    apperror.InvalidInput,
			Op:      op,
			Message: "interval must be positive",
		}
	}

	m.statusMu.Lock()
	m.mu.Lock()
	m.haltLocked()

	m.state.generation++
	gen := m.state.generation
	m.state.failures.recordSuccess()
	m.state.history.Reset()
	m.state.latest = nil
	m.state.interval = interval
	m.state.running = true
	m.state.startedAt = m.clock.Now()

	ctx, cancel := context.WithCancel(context.Background())
	ticker := m.clock.NewTicker(interval)
	m.state.cancel = cancel
	m.state.ticker = ticker

	m.state.statusSub = m.bus.LatencyUpdates.On(func(u LatencyUpdate) { m.classify(gen, u) })
	if m.opts.OutageHandler != nil {
		m.state.outageSub = m.bus.Outages.On(m.opts.OutageHandler)
	}
	m.mu.Unlock()

	m.logger.Info().
		Dur("interval", interval).
		Int("endpoints", len(m.opts.Endpoints)).
		Msg("monitoring started")

	m.bus.StatusChanges.Emit(StatusChange{Status: StatusUnknown})
	m.statusMu.Unlock()

	go m.run(ctx, gen, ticker)
	return nil
}

// Stop unregisters derived listeners and cancels the recurrence. History
// is kept. A probe already in flight completes but its result is dropped.
func (m *Monitor) Stop() {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.running {
		return
	}
	m.haltLocked()
	m.logger.Info().Msg("monitoring stopped")
}

// SetInterval restarts monitoring at a new cadence. The failure streak does
// not survive the restart.
func (m *Monitor) SetInterval(interval time.Duration) error {
	m.Stop()
	return m.Start(interval)
}

// LatencyHistory returns a copy of the current history.
func (m *Monitor) LatencyHistory() []LatencySample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.history.Snapshot()
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *int
	if m.state.latest != nil {
		v := *m.state.latest
		latest = &v
	}

	status := StatusUnknown
	if m.state.running && (latest != nil || m.state.failures.count() > 0) {
		status = m.opts.Classifier.Classify(latest, m.state.history.Snapshot())
	}

	return Snapshot{
		Running:             m.state.running,
		Interval:            m.state.interval,
		IntervalMs:          m.state.interval.Milliseconds(),
		Status:              status,
		LatestRoundTripMs:   latest,
		ConsecutiveFailures: m.state.failures.count(),
		HistoryLength:       m.state.history.Len(),
	}
}

// haltLocked must be called with m.mu held. Listeners go first so nothing
// derived fires after the run is considered stopped.
func (m *Monitor) haltLocked() {
	m.bus.LatencyUpdates.Off(m.state.statusSub)
	m.bus.Outages.Off(m.state.outageSub)
	m.state.statusSub = events.Subscription{}
	m.state.outageSub = events.Subscription{}

	if m.state.ticker != nil {
		m.state.ticker.Stop()
		m.state.ticker = nil
	}
	if m.state.cancel != nil {
		m.state.cancel()
		m.state.cancel = nil
	}
	m.state.running = false
}

func (m *Monitor) run(ctx context.Context, gen uint64, ticker clockwork.Ticker) {
	m.tick(ctx, gen)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if ctx.Err() != nil {
				return
			}
			m.tick(ctx, gen)
		}
	}
}

func (m *Monitor) tick(ctx context.Context, gen uint64) {
	res, ok := m.probeChain(ctx)

	m.mu.Lock()
	if !m.state.running || m.state.generation != gen {
		m.mu.Unlock()
		m.logger.Debug().Uint64("generation", gen).Msg("discarding probe result from stopped run")
		return
	}

	var (
		update LatencyUpdate
		outage *OutageDetected
	)
	if ok {
		rtt := *res.RoundTripMs
		m.state.failures.recordSuccess()
		m.state.history.Append(LatencySample{
			TimestampMs: m.sampleTimeLocked(),
			RoundTripMs: rtt,
		})
		m.state.latest = &rtt
		update = LatencyUpdate{
			RoundTripMs: &rtt,
			Endpoint:    res.EndpointName,
			History:     m.state.history.Snapshot(),
			Timing:      res.Timing,
		}
	} else {
		count, crossed := m.state.failures.recordFailure()
		m.state.latest = nil
		update = LatencyUpdate{History: m.state.history.Snapshot()}
		if crossed {
			outage = &OutageDetected{Count: count, At: m.clock.Now()}
		}
		m.logger.Warn().Int("failures", count).Msg("all endpoints failed")
	}
	m.mu.Unlock()

	m.bus.LatencyUpdates.Emit(update)
	if outage != nil {
		m.logger.Error().Int("failures", outage.Count).Msg("outage detected")
		m.bus.Outages.Emit(*outage)
	}
}

// probeChain tries endpoints in order and stops at the first success.
// Probes are detached from ctx so stopping never aborts one mid-flight,
// but no further endpoint is tried once the run is cancelled.
func (m *Monitor) probeChain(ctx context.Context) (probe.Result, bool) {
	probeCtx := context.WithoutCancel(ctx)

	for i, ep := range m.opts.Endpoints {
		if i > 0 && ctx.Err() != nil {
			break
		}

		res := m.prober.Probe(probeCtx, ep, m.opts.ProbeTimeout)
		if res.Succeeded && res.RoundTripMs != nil {
			return res, true
		}

		m.logger.Debug().
			Str("endpoint", ep.Name).
			Str("reason", res.Reason).
			Msg("probe failed, trying next endpoint")
	}
	return probe.Result{}, false
}

// classify derives the status for a tick of run gen. Updates that reach it
// after that run was halted or replaced are dropped.
func (m *Monitor) classify(gen uint64, u LatencyUpdate) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()

	if !m.isCurrent(gen) {
		m.logger.Debug().Uint64("generation", gen).Msg("dropping status from stopped run")
		return
	}

	m.bus.StatusChanges.Emit(StatusChange{
		Status:      m.opts.Classifier.Classify(u.RoundTripMs, u.History),
		RoundTripMs: u.RoundTripMs,
	})
}

func (m *Monitor) isCurrent(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.running && m.state.generation == gen
}

// sampleTimeLocked must be called with m.mu held. It is the run's start in
// wall time plus monotonic elapsed time, so a wall clock step cannot move
// samples backwards.
func (m *Monitor) sampleTimeLocked() int64 {
	return m.state.startedAt.UnixMilli() + m.clock.Since(m.state.startedAt).Milliseconds()
}

func (m *Monitor) HistoryCapacity() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.history.Capacity()
}
