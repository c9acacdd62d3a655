package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connwatch/pkg/redisstore"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	status    *redisstore.StatusRecord
	outage    *redisstore.OutageRecord
	diag      []byte
	diagErr   error
	statusErr error
}

func (f fakeStore) GetStatus(context.Context) (*redisstore.StatusRecord, error) {
	return f.status, f.statusErr
}

func (f fakeStore) GetOutage(context.Context) (*redisstore.OutageRecord, error) {
	return f.outage, nil
}

func (f fakeStore) GetDiagnostics(context.Context) ([]byte, error) {
	return f.diag, f.diagErr
}

func TestHandler_GetState(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		store     fakeStore
		wantCode  int
		wantDiag  string
		wantState bool
	}{
		{
			name: "everything mirrored",
			store: fakeStore{
				status: &redisstore.StatusRecord{Status: "offline", LatencyMs: -1, CheckedAt: at},
				outage: &redisstore.OutageRecord{FailureCount: 4, FirstFailureAt: at, LastFailureAt: at},
				diag:   []byte(`{"reachable":[]}`),
			},
			wantCode:  http.StatusOK,
			wantDiag:  `{"reachable":[]}`,
			wantState: true,
		},
		{
			name:     "nothing mirrored",
			store:    fakeStore{diagErr: redisstore.ErrKeyNotFound},
			wantCode: http.StatusOK,
			wantDiag: "",
		},
		{
			name:     "redis down",
			store:    fakeStore{statusErr: errors.New("dial tcp: refused")},
			wantCode: http.StatusBadGateway,
		},
		{
			name:     "diagnostics read fails",
			store:    fakeStore{diagErr: errors.New("timeout")},
			wantCode: http.StatusBadGateway,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			logger := zerolog.Nop()
			rec := httptest.NewRecorder()
			Routes(NewHandler(tc.store, &logger)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			require.Equal(t, tc.wantCode, rec.Code)
			if tc.wantCode != http.StatusOK {
				return
			}

			var body struct {
				Data struct {
					Status      *redisstore.StatusRecord `json:"status"`
					Outage      *redisstore.OutageRecord `json:"outage"`
					Diagnostics json.RawMessage          `json:"diagnostics"`
				} `json:"data"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			if tc.wantDiag == "" {
				require.Contains(t, []string{"", "null"}, string(body.Data.Diagnostics))
			} else {
				require.JSONEq(t, tc.wantDiag, string(body.Data.Diagnostics))
			}
			if tc.wantState {
				require.Equal(t, "offline", body.Data.Status.Status)
				require.Equal(t, 4, body.Data.Outage.FailureCount)
			} else {
				require.Nil(t, body.Data.Status)
				require.Nil(t, body.Data.Outage)
			}
		})
	}
}
