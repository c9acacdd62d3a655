package monitor

import (
	"encoding/json"
	"net/http"
	"time"

	"connwatch/pkg/apperror"
	"connwatch/pkg/utils"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Controller interface {
	Start(interval time.Duration) error
	Stop()
	Snapshot() Snapshot
	LatencyHistory() []LatencySample
	HistoryCapacity() int
}

type Handler struct {
	monitor   Controller
	validator *validator.Validate
}

func NewHandler(monitor Controller, validator *validator.Validate) *Handler {
	return &Handler{
		monitor:   monitor,
		validator: validator,
	}
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	utils.WriteJSON(w, http.StatusOK, reqID, utils.StatusRetrieved, h.monitor.Snapshot())
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	resp := GetHistoryResponse{
		Capacity: h.monitor.HistoryCapacity(),
		Samples:  h.monitor.LatencyHistory(),
	}
	utils.WriteJSON(w, http.StatusOK, reqID, utils.HistoryRetrieved, resp)
}

func (h *Handler) StartMonitoring(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	// decode request body
	var req StartMonitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid request body")
		return
	}

	// validate request body
	if err := h.validator.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "interval_ms must be between 100 and 3600000")
		return
	}

	if err := h.monitor.Start(time.Duration(req.IntervalMs) * time.Millisecond); err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, utils.MonitorStarted, StartMonitorResponse{IntervalMs: req.IntervalMs})
}

func (h *Handler) StopMonitoring(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	h.monitor.Stop()
	utils.WriteJSON(w, http.StatusOK, reqID, utils.MonitorStopped, h.monitor.Snapshot())
}
