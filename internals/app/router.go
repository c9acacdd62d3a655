package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	middle "connwatch/internals/middleware"
	"connwatch/internals/modules/auth"
	"connwatch/internals/modules/diagnostics"
	"connwatch/internals/modules/incident"
	"connwatch/internals/modules/mirror"
	"connwatch/internals/modules/monitor"
	"connwatch/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	requestTimeout = 5 * time.Second
	healthTimeout  = 2 * time.Second
)

var errConnClosed = errors.New("connection closed")

type HealthResponse struct {
	Status     string            `json:"status"`
	Monitoring bool              `json:"monitoring"`
	Deps       map[string]string `json:"deps"`
}

func RegisterRoutes(c *Container) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middle.RequestID)
	r.Use(middle.Logger(c.Logger))

	r.Get("/healthz", c.health)

	r.Route("/api/v1", func(v1 chi.Router) {
		// long-lived, so outside the timeout group
		v1.Get("/events", c.streamHandler.ServeWS)

		v1.Group(func(api chi.Router) {
			api.Use(middleware.Timeout(requestTimeout))

			api.Mount("/auth", auth.Routes(c.authHandler))
			api.Mount("/", monitor.Routes(c.monitorHandler, c.authMW.Handle, middle.AllowAdmin))

			if c.mirrorHandler != nil {
				api.Mount("/state", mirror.Routes(c.mirrorHandler))
			}
			if c.incidentHandler != nil {
				api.With(c.authMW.Handle, middle.AllowAdmin).
					Mount("/incidents", incident.Routes(c.incidentHandler))
			}
		})

		// a sweep can outlast the default timeout
		v1.With(middleware.Timeout(c.Config.Diagnostics.Timeout+requestTimeout), c.authMW.Handle, middle.AllowAdmin).
			Mount("/diagnostics", diagnostics.Routes(c.diagHandler))
	})

	return r
}

func (c *Container) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:     "ok",
		Monitoring: c.Monitor.Snapshot().Running,
		Deps:       map[string]string{},
	}

	check := func(name string, ping func(context.Context) error) {
		if err := ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Deps[name] = err.Error()
			return
		}
		resp.Deps[name] = "ok"
	}

	if c.RedisClient != nil {
		check("redis", c.RedisClient.Ping)
	}
	if c.DB != nil {
		check("postgres", c.DB.Ping)
	}
	if c.AMQPConn != nil {
		check("rabbitmq", func(context.Context) error {
			if c.AMQPConn.IsClosed() {
				return errConnClosed
			}
			return nil
		})
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	utils.WriteJSON(w, status, middleware.GetReqID(r.Context()), "health", resp)
}
