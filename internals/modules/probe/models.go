package probe

import "time"

type Mode string

const (
	// ModeFetch succeeds as soon as response headers arrive, whatever the status code.
	ModeFetch Mode = "fetch"
	// ModeBeacon succeeds only once a complete image has been loaded.
	ModeBeacon Mode = "beacon"
)

// DefaultTimeout bounds a single probe when the caller passes zero.
const DefaultTimeout = 5 * time.Second

// Endpoint is a static probe target. URL is its identity.
type Endpoint struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Mode Mode   `json:"mode"`
}

// Timing is the per-phase breakdown of a completed fetch, in milliseconds.
// DNS and Connect are zero when an idle connection was reused.
type Timing struct {
	DNSMs      int `json:"dns_ms"`
	ConnectMs  int `json:"connect_ms"`
	TTFBMs     int `json:"ttfb_ms"`
	DownloadMs int `json:"download_ms"`
	TotalMs    int `json:"total_ms"`
}

type Result struct {
	EndpointName string    `json:"endpoint"`
	Succeeded    bool      `json:"succeeded"`
	RoundTripMs  *int      `json:"round_trip_ms"`
	Timing       *Timing   `json:"timing,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
}

// Failure reasons.
const (
	ReasonInvalidRequest = "INVALID_REQUEST"
	ReasonTimeout        = "TIMEOUT"
	ReasonAborted        = "ABORTED"
	ReasonDNS            = "DNS_FAILURE"
	ReasonNetworkTimeout = "NETWORK_TIMEOUT"
	ReasonNetwork        = "NETWORK_ERROR"
	ReasonBadStatus      = "BAD_STATUS"
	ReasonNotImage       = "NOT_AN_IMAGE"
	ReasonIncomplete     = "INCOMPLETE_BODY"
	ReasonUnknown        = "UNKNOWN_ERROR"
)
