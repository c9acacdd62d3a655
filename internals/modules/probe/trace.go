package probe

import (
	"crypto/tls"
	"math"
	"net/http/httptrace"
	"sync"
	"time"
)

// phaseRecorder collects httptrace timestamps. Dial callbacks may fire from
// several goroutines when a host resolves to multiple addresses.
type phaseRecorder struct {
	mu sync.Mutex

	start     time.Time
	dnsStart  time.Time
	dnsDone   time.Time
	connStart time.Time
	connDone  time.Time
	tlsDone   time.Time
	gotConn   time.Time
	firstByte time.Time
}

func newPhaseRecorder(start time.Time) *phaseRecorder {
	return &phaseRecorder{start: start}
}

func (r *phaseRecorder) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) { r.mark(&r.dnsStart, false) },
		DNSDone:  func(httptrace.DNSDoneInfo) { r.mark(&r.dnsDone, true) },
		ConnectStart: func(string, string) {
			r.mark(&r.connStart, false)
		},
		ConnectDone: func(_, _ string, err error) {
			if err == nil {
				r.mark(&r.connDone, true)
			}
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			if err == nil {
				r.mark(&r.tlsDone, true)
			}
		},
		GotConn:              func(httptrace.GotConnInfo) { r.mark(&r.gotConn, true) },
		GotFirstResponseByte: func() { r.mark(&r.firstByte, false) },
	}
}

// mark stores now into field; when overwrite is false only the first call wins.
func (r *phaseRecorder) mark(field *time.Time, overwrite bool) {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if overwrite || field.IsZero() {
		*field = now
	}
}

func (r *phaseRecorder) timing(end time.Time) *Timing {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &Timing{
		DNSMs:   spanMs(r.dnsStart, r.dnsDone),
		TotalMs: spanMs(r.start, end),
	}

	connEnd := r.connDone
	if r.tlsDone.After(connEnd) {
		connEnd = r.tlsDone
	}
	t.ConnectMs = spanMs(r.connStart, connEnd)

	requestStart := r.gotConn
	if requestStart.IsZero() {
		requestStart = r.start
	}
	t.TTFBMs = spanMs(requestStart, r.firstByte)
	t.DownloadMs = spanMs(r.firstByte, end)

	return t
}

func spanMs(from, to time.Time) int {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return 0
	}
	return roundMs(to.Sub(from))
}

// roundMs converts d to whole milliseconds, rounding to nearest.
func roundMs(d time.Duration) int {
	return int(math.Round(float64(d) / float64(time.Millisecond)))
}

// partialTiming is timing for a request that never got a response. It is
// nil unless name resolution or a connect completed.
func (r *phaseRecorder) partialTiming(end time.Time) *Timing {
	r.mu.Lock()
	observed := !r.dnsDone.IsZero() || !r.connDone.IsZero()
	r.mu.Unlock()

	if !observed {
		return nil
	}
	return r.timing(end)
}
