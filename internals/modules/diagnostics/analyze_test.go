package diagnostics

import (
	"testing"

	"connwatch/internals/modules/probe"

	"github.com/stretchr/testify/require"
)

var sweepEndpoints = []probe.Endpoint{
	{Name: "alpha", URL: "https://alpha.test", Mode: probe.ModeFetch},
	{Name: "beta", URL: "https://beta.test", Mode: probe.ModeFetch},
	{Name: "gamma", URL: "https://gamma.test", Mode: probe.ModeFetch},
	{Name: "pixel", URL: "https://pixel.test/p.png", Mode: probe.ModeBeacon},
}

func ok(name string, timing *probe.Timing) probe.Result {
	rtt := 10
	return probe.Result{EndpointName: name, Succeeded: true, RoundTripMs: &rtt, Timing: timing}
}

func fail(name string) probe.Result {
	return probe.Result{EndpointName: name, Reason: probe.ReasonNetwork}
}

var genericTips = []string{SuggestPowerCycle, SuggestOtherDevices, SuggestContactISP}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	fast := &probe.Timing{DNSMs: 5, ConnectMs: 20, TTFBMs: 30, TotalMs: 60}

	tests := []struct {
		name          string
		results       []probe.Result
		wantReachable []string
		wantTiming    *probe.Timing
		wantTips      []string
	}{
		{
			name:          "nothing reachable",
			results:       []probe.Result{fail("alpha"), fail("beta"), fail("gamma"), fail("pixel")},
			wantReachable: []string{},
			wantTips:      genericTips,
		},
		{
			name:          "all reachable and fast",
			results:       []probe.Result{ok("alpha", fast), ok("beta", fast), ok("gamma", fast), ok("pixel", nil)},
			wantReachable: []string{"alpha", "beta", "gamma", "pixel"},
			wantTiming:    fast,
			wantTips:      []string{},
		},
		{
			name:          "partial outage",
			results:       []probe.Result{fail("alpha"), ok("beta", fast), fail("gamma"), ok("pixel", nil)},
			wantReachable: []string{"beta", "pixel"},
			wantTiming:    fast,
			wantTips:      []string{SuggestServiceDown, SuggestRetryLater},
		},
		{
			name:          "only the beacon gets through",
			results:       []probe.Result{fail("alpha"), fail("beta"), fail("gamma"), ok("pixel", &probe.Timing{DNSMs: 500})},
			wantReachable: []string{"pixel"},
			wantTips:      []string{SuggestServiceDown, SuggestRetryLater},
		},
		{
			name: "slow dns at threshold",
			results: []probe.Result{
				ok("alpha", &probe.Timing{DNSMs: 100, ConnectMs: 10}),
				ok("beta", fast), ok("gamma", fast), ok("pixel", nil),
			},
			wantReachable: []string{"alpha", "beta", "gamma", "pixel"},
			wantTiming:    &probe.Timing{DNSMs: 100, ConnectMs: 10},
			wantTips:      []string{SuggestChangeDNS},
		},
		{
			name: "dns just under threshold",
			results: []probe.Result{
				ok("alpha", &probe.Timing{DNSMs: 99, ConnectMs: 199}),
				ok("beta", fast), ok("gamma", fast), ok("pixel", nil),
			},
			wantReachable: []string{"alpha", "beta", "gamma", "pixel"},
			wantTiming:    &probe.Timing{DNSMs: 99, ConnectMs: 199},
			wantTips:      []string{},
		},
		{
			name: "first timing in endpoint order wins",
			results: []probe.Result{
				fail("alpha"),
				ok("beta", &probe.Timing{DNSMs: 150, ConnectMs: 250}),
				ok("gamma", fast),
				ok("pixel", nil),
			},
			wantReachable: []string{"beta", "gamma", "pixel"},
			wantTiming:    &probe.Timing{DNSMs: 150, ConnectMs: 250},
			wantTips:      []string{SuggestServiceDown, SuggestRetryLater, SuggestChangeDNS, SuggestFirewall},
		},
		{
			name: "success without timing is skipped",
			results: []probe.Result{
				ok("alpha", nil),
				ok("beta", &probe.Timing{ConnectMs: 200}),
				ok("gamma", fast),
				ok("pixel", nil),
			},
			wantReachable: []string{"alpha", "beta", "gamma", "pixel"},
			wantTiming:    &probe.Timing{ConnectMs: 200},
			wantTips:      []string{SuggestFirewall},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Analyze(sweepEndpoints, tc.results, DefaultThresholds)
			require.Equal(t, tc.wantReachable, got.Reachable)
			require.Equal(t, tc.wantTiming, got.Timing)
			require.Equal(t, tc.wantTips, got.Suggestions)
		})
	}
}

func TestAnalyze_NothingReachableWithSlowDNS(t *testing.T) {
	t.Parallel()

	// failed fetches that got through name resolution still report it
	results := []probe.Result{fail("alpha"), fail("beta"), fail("gamma"), fail("pixel")}
	results[1].Timing = &probe.Timing{DNSMs: 400}
	results[3].Timing = &probe.Timing{DNSMs: 5}

	got := Analyze(sweepEndpoints, results, DefaultThresholds)
	require.Empty(t, got.Reachable)
	require.Equal(t, &probe.Timing{DNSMs: 400}, got.Timing)
	require.Equal(t, append(append([]string{}, genericTips...), SuggestChangeDNS), got.Suggestions)
}

func TestAnalyze_SuggestionsAreUnique(t *testing.T) {
	t.Parallel()

	dup := []probe.Endpoint{
		{Name: "alpha", URL: "https://alpha.test"},
		{Name: "alpha", URL: "https://alpha-2.test"},
	}
	got := Analyze(dup, []probe.Result{ok("alpha", nil), ok("alpha", nil)}, DefaultThresholds)

	require.Equal(t, []string{"alpha"}, got.Reachable)
	require.Empty(t, got.Suggestions)
}

func TestAnalyze_ShortResults(t *testing.T) {
	t.Parallel()

	got := Analyze(sweepEndpoints, []probe.Result{ok("alpha", nil)}, DefaultThresholds)
	require.Equal(t, []string{"alpha"}, got.Reachable)
	require.Equal(t, []string{SuggestServiceDown, SuggestRetryLater}, got.Suggestions)
}
