package utils

const (
	MonitorStarted     = "monitoring started"
	MonitorStopped     = "monitoring stopped"
	StatusRetrieved    = "status retrieved"
	HistoryRetrieved   = "latency history retrieved"
	DiagnosticsRan     = "diagnostics completed"
	TokenIssued        = "token issued"
	IncidentsRetrieved = "incidents retrieved"
	StateRetrieved     = "mirrored state retrieved"
)
