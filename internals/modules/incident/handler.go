package incident

import (
	"context"
	"net/http"
	"strconv"

	"connwatch/pkg/apperror"
	"connwatch/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type Reader interface {
	Get(ctx context.Context, id uuid.UUID) (Incident, error)
	List(ctx context.Context, limit, offset int32) ([]Incident, error)
}

type Handler struct {
	service Reader
}

func NewHandler(service Reader) *Handler {
	return &Handler{service: service}
}

type ListIncidentsResponse struct {
	Limit     int32      `json:"limit"`
	Offset    int32      `json:"offset"`
	Incidents []Incident `json:"incidents"`
}

// /incidents?offset=0&limit=20
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	limit, err := queryInt32(r, "limit", 20)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "limit must be a number")
		return
	}
	offset, err := queryInt32(r, "offset", 0)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "offset must be a number")
		return
	}

	incidents, err := h.service.List(ctx, limit, offset)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, utils.IncidentsRetrieved, ListIncidentsResponse{
		Limit:     limit,
		Offset:    offset,
		Incidents: incidents,
	})
}

func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "incidentID"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid incident id")
		return
	}

	inc, err := h.service.Get(ctx, id)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, utils.IncidentsRetrieved, inc)
}

func queryInt32(r *http.Request, key string, def int32) (int32, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}
