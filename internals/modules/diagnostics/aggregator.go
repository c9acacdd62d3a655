package diagnostics

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"connwatch/internals/modules/probe"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const DefaultTimeout = 8 * time.Second

type Prober interface {
	Probe(ctx context.Context, ep probe.Endpoint, timeout time.Duration) probe.Result
}

type Options struct {
	Endpoints    []probe.Endpoint
	Timeout      time.Duration
	ProbeTimeout time.Duration
	Thresholds   Thresholds
	Clock        clockwork.Clock
}

// Aggregator probes every configured endpoint in parallel and turns the
// outcome into troubleshooting suggestions.
type Aggregator struct {
	prober  Prober
	opts    Options
	logger  *zerolog.Logger
	analyze func([]probe.Endpoint, []probe.Result, Thresholds) Result
}

func NewAggregator(prober Prober, opts Options, logger *zerolog.Logger) *Aggregator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = probe.DefaultTimeout
	}
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Aggregator{
		prober:  prober,
		opts:    opts,
		logger:  logger,
		analyze: Analyze,
	}
}

// Run never returns an error. Any panic during the sweep or the analysis
// yields a Failed result.
func (a *Aggregator) Run(ctx context.Context) (res Result) {
	runID := uuid.NewString()
	started := a.opts.Clock.Now()

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().
				Str("run_id", runID).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("diagnostics aborted")
			res = Result{
				RunID:       runID,
				Reachable:   []string{},
				Suggestions: []string{SuggestCouldNotComplete},
				Failed:      true,
				StartedAt:   started,
			}
		}
		res.DurationMs = a.opts.Clock.Since(started).Milliseconds()
	}()

	results := a.sweep(ctx, runID)

	res = a.analyze(a.opts.Endpoints, results, a.opts.Thresholds)
	res.RunID = runID
	res.Probes = results
	res.StartedAt = started

	a.logger.Info().
		Str("run_id", runID).
		Int("reachable", len(res.Reachable)).
		Int("endpoints", len(a.opts.Endpoints)).
		Int("suggestions", len(res.Suggestions)).
		Msg("diagnostics completed")

	return res
}

// sweep runs one probe per endpoint under a shared deadline and waits for
// all of them. A failing probe never cancels its siblings.
func (a *Aggregator) sweep(ctx context.Context, runID string) []probe.Result {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	results := make([]probe.Result, len(a.opts.Endpoints))
	var g errgroup.Group

	for i, ep := range a.opts.Endpoints {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error().
						Str("run_id", runID).
						Str("endpoint", ep.Name).
						Interface("panic", r).
						Msg("diagnostics probe panicked")
					results[i] = probe.Result{EndpointName: ep.Name, Reason: probe.ReasonUnknown}
					err = fmt.Errorf("probe %s panicked: %v", ep.Name, r)
				}
			}()

			results[i] = a.prober.Probe(ctx, ep, a.opts.ProbeTimeout)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.Warn().Str("run_id", runID).Err(err).Msg("diagnostics sweep incomplete")
	}
	return results
}
