package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"connwatch/internals/modules/diagnostics"
	"connwatch/internals/modules/probe"
	"connwatch/internals/security"
	"connwatch/pkg/logger"

	"github.com/stretchr/testify/require"
)

type reachableProber struct {
	down map[string]bool
}

func (p reachableProber) Probe(_ context.Context, ep probe.Endpoint, _ time.Duration) probe.Result {
	if p.down[ep.Name] {
		return probe.Result{EndpointName: ep.Name, Reason: probe.ReasonNetwork}
	}
	rtt := 40
	return probe.Result{
		EndpointName: ep.Name,
		Succeeded:    true,
		RoundTripMs:  &rtt,
		Timing:       &probe.Timing{DNSMs: 4, ConnectMs: 12, TTFBMs: 20, DownloadMs: 4, TotalMs: 40},
	}
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		stdin   string
		want    string
		wantErr bool
	}{
		{name: "argument", args: []string{"s3cret"}, want: "s3cret"},
		{name: "stdin", stdin: "from-stdin\n", want: "from-stdin"},
		{name: "stdin without newline", stdin: "no-newline", want: "no-newline"},
		{name: "empty", stdin: "\n", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			cmd := NewHashPasswordCmd()
			cmd.SetArgs(append([]string{}, tc.args...))
			cmd.SetIn(strings.NewReader(tc.stdin))
			cmd.SetOut(&out)
			cmd.SetErr(&bytes.Buffer{})

			err := cmd.Execute()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			ok, err := security.ComparePassword(tc.want, strings.TrimSpace(out.String()))
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestDiagnose_Text(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := newDiagnoseCmd(&GlobalFlags{}, reachableProber{down: map[string]bool{"google": true}})
	cmd.SetArgs([]string{})
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())

	text := out.String()
	require.Contains(t, text, "Reachable: cloudflare, one.one.one.one, google-favicon")
	require.Contains(t, text, "dns 4ms, connect 12ms")
	require.Contains(t, text, diagnostics.SuggestServiceDown)
}

func TestDiagnose_JSON(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := newDiagnoseCmd(&GlobalFlags{}, reachableProber{})
	cmd.SetArgs([]string{"--json"})
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())

	var res diagnostics.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Reachable, 4)
	require.Empty(t, res.Suggestions)
	require.False(t, res.Failed)
}

func TestWriteResultText_NothingReachable(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	res := diagnostics.Result{
		Failed:      true,
		Suggestions: []string{diagnostics.SuggestCouldNotComplete},
	}
	require.NoError(t, writeResultText(&out, res, logger.Nop()))

	require.Equal(t,
		"Reachable: none\nThe sweep did not complete.\nSuggestions:\n  - "+diagnostics.SuggestCouldNotComplete+"\n",
		out.String())
}
