package monitor

type StartMonitorRequest struct {
	IntervalMs int64 `json:"interval_ms" validate:"required,gte=100,lte=3600000"`
}

type StartMonitorResponse struct {
	IntervalMs int64 `json:"interval_ms"`
}

type GetHistoryResponse struct {
	Capacity int             `json:"capacity"`
	Samples  []LatencySample `json:"samples"`
}
