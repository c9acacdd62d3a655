package diagnostics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type runnerFunc func(ctx context.Context) Result

func (f runnerFunc) RunDiagnostics(ctx context.Context) Result { return f(ctx) }

func TestHandler_Run(t *testing.T) {
	t.Parallel()

	h := NewHandler(runnerFunc(func(context.Context) Result {
		return Result{Failed: true, Reachable: []string{}, Suggestions: []string{SuggestCouldNotComplete}}
	}))

	rec := httptest.NewRecorder()
	Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data Result `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.True(t, body.Data.Failed)
	require.Equal(t, []string{SuggestCouldNotComplete}, body.Data.Suggestions)
}
