package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func samples(n int) []LatencySample {
	out := make([]LatencySample, n)
	for i := range out {
		out[i] = LatencySample{TimestampMs: int64(i), RoundTripMs: 10 + i}
	}
	return out
}

func TestHistory_AppendBelowCapacity(t *testing.T) {
	t.Parallel()

	h := NewHistory(3)
	require.False(t, h.Append(LatencySample{TimestampMs: 1, RoundTripMs: 5}))
	require.False(t, h.Append(LatencySample{TimestampMs: 2, RoundTripMs: 6}))
	require.Equal(t, 2, h.Len())
}

func TestHistory_TimestampsNeverGoBackwards(t *testing.T) {
	t.Parallel()

	h := NewHistory(4)
	h.Append(LatencySample{TimestampMs: 1000, RoundTripMs: 5})
	h.Append(LatencySample{TimestampMs: 400, RoundTripMs: 6})
	h.Append(LatencySample{TimestampMs: 1200, RoundTripMs: 7})

	require.Equal(t, []LatencySample{
		{TimestampMs: 1000, RoundTripMs: 5},
		{TimestampMs: 1000, RoundTripMs: 6},
		{TimestampMs: 1200, RoundTripMs: 7},
	}, h.Snapshot())
}

func TestHistory_EvictsOldestWhenFull(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		capacity int
		appended int
	}{
		{name: "partially filled", capacity: 10, appended: 3},
		{name: "exactly full", capacity: 4, appended: 4},
		{name: "one over", capacity: 4, appended: 5},
		{name: "default capacity many over", capacity: 0, appended: DefaultHistoryCapacity + 37},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := NewHistory(tc.capacity)
			all := samples(tc.appended)
			for _, s := range all {
				h.Append(s)
			}

			got := h.Snapshot()
			require.LessOrEqual(t, len(got), h.Capacity())
			require.Equal(t, all[len(all)-len(got):], got, "keeps the newest samples in order")

			before := h.Snapshot()
			next := LatencySample{TimestampMs: int64(tc.appended), RoundTripMs: 1}
			evicted := h.Append(next)
			after := h.Snapshot()

			if len(before) == h.Capacity() {
				require.True(t, evicted)
				require.Equal(t, append(before[1:], next), after)
			} else {
				require.False(t, evicted)
				require.Equal(t, append(before, next), after)
			}
		})
	}
}

func TestHistory_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	h := NewHistory(5)
	h.Append(LatencySample{TimestampMs: 1, RoundTripMs: 20})

	snap := h.Snapshot()
	snap[0].RoundTripMs = 999

	require.Equal(t, []LatencySample{{TimestampMs: 1, RoundTripMs: 20}}, h.Snapshot())
}

func TestHistory_Reset(t *testing.T) {
	t.Parallel()

	h := NewHistory(2)
	h.Append(LatencySample{TimestampMs: 1})
	h.Reset()

	require.Equal(t, 0, h.Len())
	require.Empty(t, h.Snapshot())
}
