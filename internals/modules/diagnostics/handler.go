package diagnostics

import (
	"context"
	"net/http"

	"connwatch/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Runner interface {
	RunDiagnostics(ctx context.Context) Result
}

type Handler struct {
	runner Runner
}

func NewHandler(runner Runner) *Handler {
	return &Handler{runner: runner}
}

// Run always answers 200: a failed sweep is reported in the result itself.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	res := h.runner.RunDiagnostics(r.Context())
	utils.WriteJSON(w, http.StatusOK, reqID, utils.DiagnosticsRan, res)
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Run)
	return r
}
