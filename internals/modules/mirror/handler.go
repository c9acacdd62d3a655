// Package mirror serves the state the recorder and alert service mirror to
// redis. It reflects the last writer, which may be another instance.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"connwatch/pkg/apperror"
	"connwatch/pkg/redisstore"
	"connwatch/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Store interface {
	GetStatus(ctx context.Context) (*redisstore.StatusRecord, error)
	GetOutage(ctx context.Context) (*redisstore.OutageRecord, error)
	GetDiagnostics(ctx context.Context) ([]byte, error)
}

// StateResponse fields are null when nothing is mirrored.
type StateResponse struct {
	Status      *redisstore.StatusRecord `json:"status"`
	Outage      *redisstore.OutageRecord `json:"outage"`
	Diagnostics json.RawMessage          `json:"diagnostics"`
}

type Handler struct {
	store  Store
	logger *zerolog.Logger
}

func NewHandler(store Store, logger *zerolog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	const op = "handler.mirror.get_state"

	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	state, err := h.read(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Str("request_id", reqID).Msg("failed to read mirrored state")
		utils.FromAppError(w, reqID, apperror.New(apperror.Dependency, op, err).WithMessage("state mirror unavailable"))
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, utils.StateRetrieved, state)
}

func (h *Handler) read(ctx context.Context) (StateResponse, error) {
	var out StateResponse
	var err error

	if out.Status, err = h.store.GetStatus(ctx); err != nil {
		return out, err
	}
	if out.Outage, err = h.store.GetOutage(ctx); err != nil {
		return out, err
	}

	diag, err := h.store.GetDiagnostics(ctx)
	switch {
	case errors.Is(err, redisstore.ErrKeyNotFound):
	case err != nil:
		return out, err
	default:
		out.Diagnostics = diag
	}

	return out, nil
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetState)

	return r
}

/*
- GET: /state -> last mirrored status, outage streak and diagnostics
	req auth : false
	resp : StateResponse
*/
