package monitor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts reads publicly and control behind the given guards.
func Routes(h *Handler, guards ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/status", h.GetStatus)
	r.Get("/history", h.GetHistory)

	r.Group(func(r chi.Router) {
		r.Use(guards...)

		r.Post("/monitor/start", h.StartMonitoring)
		r.Post("/monitor/stop", h.StopMonitoring)
	})

	return r
}

/*
- GET: /status -> current snapshot
	req auth : false
	resp : Snapshot

- GET: /history -> latency history copy
	req auth : false
	resp : GetHistoryResponse

- POST: /monitor/start -> (re)start monitoring
	req auth : admin
	body : StartMonitorRequest
	resp : StartMonitorResponse

- POST: /monitor/stop -> stop monitoring, history kept
	req auth : admin
	resp : Snapshot
*/
