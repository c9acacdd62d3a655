package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Upper bounds on how much of a body is read.
const (
	maxDrainBytes = 1 << 20
	maxImageBytes = 4 << 20
)

// HTTPProber issues one timed request per call. It never returns an error:
// every failure is folded into a Result.
type HTTPProber struct {
	client *http.Client
	now    func() time.Time
	// failureTiming attaches the phases observed before a transport
	// failure to the failed Result.
	failureTiming bool
}

func NewHTTPProber(client *http.Client) *HTTPProber {
	return &HTTPProber{
		client: client,
		now:    time.Now,
	}
}

// WithFailureTiming makes failed fetches report the DNS and connect phases
// they completed, if any.
func (p *HTTPProber) WithFailureTiming() *HTTPProber {
	p.failureTiming = true
	return p
}

func (p *HTTPProber) Probe(ctx context.Context, ep Endpoint, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := p.now()
	target, err := cacheBusted(ep.URL, start)
	if err != nil {
		return p.failure(ep, ReasonInvalidRequest)
	}

	rec := newPhaseRecorder(start)
	reqCtx = httptrace.WithClientTrace(reqCtx, rec.clientTrace())

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return p.failure(ep, ReasonInvalidRequest)
	}
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	req.Header.Set("Pragma", "no-cache")
	if ep.Mode == ModeBeacon {
		req.Header.Set("Accept", "image/*")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		res := p.failure(ep, classifyError(err))
		if p.failureTiming && ep.Mode != ModeBeacon {
			res.Timing = rec.partialTiming(res.CheckedAt)
		}
		return res
	}
	defer resp.Body.Close()

	if ep.Mode == ModeBeacon {
		return p.completeBeacon(ep, resp, start)
	}

	// reachability only: any status counts once headers are in
	rtt := roundMs(p.now().Sub(start))
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	end := p.now()

	return Result{
		EndpointName: ep.Name,
		Succeeded:    true,
		RoundTripMs:  &rtt,
		Timing:       rec.timing(end),
		CheckedAt:    end,
	}
}

func (p *HTTPProber) completeBeacon(ep Endpoint, resp *http.Response, start time.Time) Result {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return p.failure(ep, ReasonBadStatus)
	}
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		return p.failure(ep, ReasonNotImage)
	}
	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxImageBytes)); err != nil {
		return p.failure(ep, ReasonIncomplete)
	}

	end := p.now()
	rtt := roundMs(end.Sub(start))
	return Result{
		EndpointName: ep.Name,
		Succeeded:    true,
		RoundTripMs:  &rtt,
		CheckedAt:    end,
	}
}

func (p *HTTPProber) failure(ep Endpoint, reason string) Result {
	return Result{
		EndpointName: ep.Name,
		Succeeded:    false,
		Reason:       reason,
		CheckedAt:    p.now(),
	}
}

// cacheBusted appends a unique query parameter so intermediaries cannot
// answer from cache.
func cacheBusted(raw string, at time.Time) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("unsupported scheme")
	}
	if u.Host == "" {
		return "", errors.New("missing host")
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(at.UnixNano(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func classifyError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ReasonAborted
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ReasonDNS
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ReasonNetworkTimeout
		}
		return ReasonNetwork
	}

	return ReasonUnknown
}
