package monitor

// DefaultHistoryCapacity keeps roughly 25 minutes of samples at a 2.5s
// effective cadence.
const DefaultHistoryCapacity = 600

// History is a bounded FIFO of latency samples in ascending time order.
// It is not safe for concurrent use; Monitor guards it.
type History struct {
	capacity int
	samples  []LatencySample
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		capacity: capacity,
		samples:  make([]LatencySample, 0, capacity),
	}
}

// Append adds s, evicting the oldest sample when full. It reports whether
// an eviction happened. A timestamp older than the newest sample is raised
// to it so the order stays ascending.
func (h *History) Append(s LatencySample) bool {
	if n := len(h.samples); n > 0 && s.TimestampMs < h.samples[n-1].TimestampMs {
		s.TimestampMs = h.samples[n-1].TimestampMs
	}
	if len(h.samples) < h.capacity {
		h.samples = append(h.samples, s)
		return false
	}
	copy(h.samples, h.samples[1:])
	h.samples[len(h.samples)-1] = s
	return true
}

// Snapshot returns a copy callers may mutate freely.
func (h *History) Snapshot() []LatencySample {
	out := make([]LatencySample, len(h.samples))
	copy(out, h.samples)
	return out
}

func (h *History) Len() int {
	return len(h.samples)
}

func (h *History) Capacity() int {
	return h.capacity
}

func (h *History) Reset() {
	h.samples = h.samples[:0]
}
