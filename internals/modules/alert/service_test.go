package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"connwatch/internals/modules/diagnostics"
	"connwatch/internals/modules/events"
	"connwatch/internals/modules/monitor"
	"connwatch/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeDiag struct {
	mu   sync.Mutex
	runs int
}

func (f *fakeDiag) Run(context.Context) diagnostics.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	return diagnostics.Result{Reachable: []string{}, Suggestions: []string{diagnostics.SuggestPowerCycle}}
}

func (f *fakeDiag) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

type fakeIncidents struct {
	mu        sync.Mutex
	outages   []int
	annotated [][]string
	resolved  int
	open      bool
}

func (f *fakeIncidents) RecordOutage(_ context.Context, count int, _ time.Time) (uuid.UUID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outages = append(f.outages, count)
	opened := !f.open
	f.open = true
	return uuid.New(), opened, nil
}

func (f *fakeIncidents) Annotate(_ context.Context, _, suggestions []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.annotated = append(f.annotated, suggestions)
	return nil
}

func (f *fakeIncidents) Resolve(context.Context, time.Time) (uuid.UUID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved++
	f.open = false
	return uuid.New(), true, nil
}

type fakeStore struct {
	mu          sync.Mutex
	recorded    []int
	incidentIDs []string
	claims      int
	refuseClaim bool
	cleared     int
	diagnostics [][]byte
}

func (f *fakeStore) RecordOutage(_ context.Context, count int, _ time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, count)
	return len(f.recorded) == 1, nil
}

func (f *fakeStore) SetOutageIncident(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incidentIDs = append(f.incidentIDs, id)
	return nil
}

func (f *fakeStore) ClaimOutageDiagnosis(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims++
	return !f.refuseClaim, nil
}

func (f *fakeStore) ClearOutage(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	return nil
}

func (f *fakeStore) StoreDiagnostics(_ context.Context, payload []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.diagnostics = append(f.diagnostics, payload)
	return nil
}

type fakePublisher struct {
	mu    sync.Mutex
	types []string
}

func (f *fakePublisher) Publish(_ context.Context, eventType string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.types = append(f.types, eventType)
	return nil
}

func (f *fakePublisher) count(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.types {
		if t == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	svc       *AlertService
	diag      *fakeDiag
	incidents *fakeIncidents
	store     *fakeStore
	publisher *fakePublisher
	results   *events.Topic[diagnostics.Result]
	clock     *clockwork.FakeClock
}

func newFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()

	logger := zerolog.Nop()
	f := &fixture{
		diag:      &fakeDiag{},
		incidents: &fakeIncidents{},
		store:     &fakeStore{},
		publisher: &fakePublisher{},
		results:   events.NewTopic[diagnostics.Result]("diagnostics", &logger),
		clock:     clockwork.NewFakeClock(),
	}

	opts := Options{
		WorkerCount: 2,
		RunOnOutage: true,
		Incidents:   f.incidents,
		Store:       f.store,
		Publisher:   f.publisher,
		Results:     f.results,
		Clock:       f.clock,
	}
	if mutate != nil {
		mutate(&opts)
	}

	f.svc = NewAlertService(f.diag, opts, &logger)
	f.svc.Start()
	t.Cleanup(f.svc.Close)
	return f
}

func rtt(ms int) *int { return &ms }

func (f *fixture) outage(count int) {
	f.svc.OnOutage(monitor.OutageDetected{Count: count, At: f.clock.Now()})
}

func TestAlertService_DiagnosesOncePerStreak(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.outage(3)
	f.outage(4)
	f.outage(5)
	f.svc.Close()

	require.Equal(t, 1, f.diag.count())
	require.Equal(t, []int{3, 4, 5}, f.incidents.outages)
	require.Len(t, f.incidents.annotated, 1)
	require.Equal(t, []int{3, 4, 5}, f.store.recorded)
	require.Len(t, f.store.incidentIDs, 1)
	require.Equal(t, 1, f.store.claims)
	require.Len(t, f.store.diagnostics, 1)
	require.Equal(t, 3, f.publisher.count(rabbitmq.EventOutageDetected))
	require.Equal(t, 1, f.publisher.count(rabbitmq.EventDiagnosticsCompleted))
}

func TestAlertService_RecoveryEndsStreak(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	f.svc.OnLatency(monitor.LatencyUpdate{RoundTripMs: rtt(20)})
	f.outage(3)
	f.svc.OnLatency(monitor.LatencyUpdate{})
	f.svc.OnLatency(monitor.LatencyUpdate{RoundTripMs: rtt(25)})
	f.svc.OnLatency(monitor.LatencyUpdate{RoundTripMs: rtt(30)})
	f.outage(3)
	f.svc.Close()

	require.Equal(t, 1, f.incidents.resolved, "only the first success after a streak recovers")
	require.Equal(t, 1, f.store.cleared)
	require.Equal(t, 1, f.publisher.count(rabbitmq.EventOutageRecovered))
	require.Equal(t, 2, f.diag.count(), "a new streak is diagnosed again")
}

func TestAlertService_RunOnOutageDisabled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(o *Options) { o.RunOnOutage = false })
	f.outage(3)
	f.svc.Close()

	require.Zero(t, f.diag.count())
	require.Equal(t, []int{3}, f.incidents.outages)
}

func TestAlertService_StreakAlreadyDiagnosedElsewhere(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.store.refuseClaim = true
	f.outage(3)
	f.svc.Close()

	require.Zero(t, f.diag.count())
}

func TestAlertService_WithoutOptionalCollaborators(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(o *Options) {
		o.Incidents = nil
		o.Store = nil
		o.Publisher = nil
		o.Results = nil
	})
	f.outage(3)
	f.svc.OnLatency(monitor.LatencyUpdate{RoundTripMs: rtt(1)})
	f.svc.Close()

	require.Equal(t, 1, f.diag.count())
}

func TestAlertService_ManualRun(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	var got []diagnostics.Result
	f.results.On(func(r diagnostics.Result) { got = append(got, r) })

	res := f.svc.RunDiagnostics(context.Background())

	require.Equal(t, []string{diagnostics.SuggestPowerCycle}, res.Suggestions)
	require.Len(t, got, 1)
	require.Len(t, f.store.diagnostics, 1)
	require.Empty(t, f.incidents.annotated, "manual runs are not tied to an incident")
	require.Equal(t, 1, f.publisher.count(rabbitmq.EventDiagnosticsCompleted))
}

func TestAlertService_EventsAfterCloseAreDropped(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.svc.Close()

	require.NotPanics(t, func() {
		f.outage(3)
		f.svc.OnLatency(monitor.LatencyUpdate{RoundTripMs: rtt(5)})
	})
	f.svc.Close()
	require.Empty(t, f.incidents.outages)
}
