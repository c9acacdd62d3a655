package incident

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	id, _, err := svc.RecordOutage(context.Background(), 3, time.Now())
	require.NoError(t, err)

	router := Routes(NewHandler(svc))

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "list default paging", path: "/", want: http.StatusOK},
		{name: "list bad limit", path: "/?limit=abc", want: http.StatusBadRequest},
		{name: "list limit out of range", path: "/?limit=1000", want: http.StatusBadRequest},
		{name: "get", path: "/" + id.String(), want: http.StatusOK},
		{name: "get unknown", path: "/" + uuid.NewString(), want: http.StatusNotFound},
		{name: "get malformed id", path: "/not-a-uuid", want: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			require.Equal(t, tc.want, rec.Code)
		})
	}
}
