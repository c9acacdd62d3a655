package monitor

// DefaultOutageThreshold is the number of consecutive all-failed ticks
// before an outage is reported.
const DefaultOutageThreshold = 3

type outageTracker struct {
	threshold int
	failures  int
}

func newOutageTracker(threshold int) outageTracker {
	if threshold <= 0 {
		threshold = DefaultOutageThreshold
	}
	return outageTracker{threshold: threshold}
}

// recordFailure counts a full-cycle failure. outage is true on every call
// once the streak has reached the threshold.
func (o *outageTracker) recordFailure() (count int, outage bool) {
	o.failures++
	return o.failures, o.failures >= o.threshold
}

func (o *outageTracker) recordSuccess() {
	o.failures = 0
}

func (o *outageTracker) count() int {
	return o.failures
}
