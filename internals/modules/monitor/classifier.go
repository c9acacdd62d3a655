package monitor

// Classifier maps the latest round trip and recent history to a Status.
type Classifier struct {
	// Window is both the number of trailing samples inspected and the
	// success-rate denominator, even while history is shorter.
	Window            int
	MinSuccessRate    float64
	DegradedLatencyMs int
}

var DefaultClassifier = Classifier{
	Window:            30,
	MinSuccessRate:    0.7,
	DegradedLatencyMs: 300,
}

// ComputeStatus classifies with DefaultClassifier.
func ComputeStatus(latest *int, history []LatencySample) Status {
	return DefaultClassifier.Classify(latest, history)
}

func (c Classifier) Classify(latest *int, history []LatencySample) Status {
	if latest == nil {
		return StatusDisconnected
	}

	window := c.Window
	if window <= 0 {
		window = DefaultClassifier.Window
	}

	// failed ticks never append, so the samples present in the window are the successes
	present := min(len(history), window)
	rate := float64(present) / float64(window)
	if rate < c.MinSuccessRate {
		return StatusDegraded
	}

	if *latest >= c.DegradedLatencyMs {
		return StatusDegraded
	}
	return StatusConnected
}
