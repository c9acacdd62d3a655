package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connwatch/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	started  []time.Duration
	stopped  int
	startErr error
	history  []LatencySample
}

func (f *fakeController) Start(interval time.Duration) error {
	f.started = append(f.started, interval)
	return f.startErr
}

func (f *fakeController) Stop() { f.stopped++ }

func (f *fakeController) Snapshot() Snapshot {
	return Snapshot{Running: len(f.started) > f.stopped, Status: StatusUnknown}
}

func (f *fakeController) LatencyHistory() []LatencySample { return f.history }

func (f *fakeController) HistoryCapacity() int { return DefaultHistoryCapacity }

func newTestRouter(c Controller) http.Handler {
	h := NewHandler(c, validator.New())
	return Routes(h)
}

func TestHandler_StartMonitoring(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		startErr  error
		wantCode  int
		wantStart []time.Duration
	}{
		{name: "ok", body: `{"interval_ms": 2500}`, wantCode: http.StatusOK, wantStart: []time.Duration{2500 * time.Millisecond}},
		{name: "missing interval", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "too small", body: `{"interval_ms": 10}`, wantCode: http.StatusBadRequest},
		{name: "malformed", body: `{"interval_ms":`, wantCode: http.StatusBadRequest},
		{
			name:      "monitor rejects",
			body:      `{"interval_ms": 1000}`,
			startErr:  &apperror.Error{Kind: apperror.InvalidInput, Message: "nope"},
			wantCode:  http.StatusBadRequest,
			wantStart: []time.Duration{time.Second},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := &fakeController{startErr: tc.startErr}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/monitor/start", strings.NewReader(tc.body))
			newTestRouter(c).ServeHTTP(rec, req)

			require.Equal(t, tc.wantCode, rec.Code)
			require.Equal(t, tc.wantStart, c.started)
		})
	}
}

func TestHandler_StopAndStatus(t *testing.T) {
	t.Parallel()

	c := &fakeController{}
	router := newTestRouter(c)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/monitor/stop", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, c.stopped)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool     `json:"success"`
		Data    Snapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.True(t, body.Success)
	require.Equal(t, StatusUnknown, body.Data.Status)
}

func TestHandler_GetHistory(t *testing.T) {
	t.Parallel()

	c := &fakeController{history: []LatencySample{{TimestampMs: 1, RoundTripMs: 20}, {TimestampMs: 2, RoundTripMs: 30}}}
	rec := httptest.NewRecorder()
	newTestRouter(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data GetHistoryResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, DefaultHistoryCapacity, body.Data.Capacity)
	require.Equal(t, c.history, body.Data.Samples)
}
