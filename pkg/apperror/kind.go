package apperror

// Kind classifies an Error; GetHTTPStatus maps it to a status code.
type Kind string

const (
	InvalidInput   Kind = "invalid_input"
	NotFound       Kind = "not_found"
	Conflict       Kind = "conflict"
	Unauthorised   Kind = "unauthorised"
	Forbidden      Kind = "forbidden"
	RequestTimeout Kind = "request_timeout"
	// Unavailable means the feature is switched off by configuration.
	Unavailable Kind = "unavailable"
	Internal    Kind = "internal"
	// Dependency means redis, postgres or the broker could not be reached.
	Dependency  Kind = "dependency_failure"
	DatabaseErr Kind = "database_error"
)
