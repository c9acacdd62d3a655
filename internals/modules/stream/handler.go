package stream

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"connwatch/internals/modules/diagnostics"
	"connwatch/internals/modules/events"
	"connwatch/internals/modules/monitor"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
	clientBuffer = 64
)

// Message types written to clients.
const (
	TypeSnapshot       = "snapshot"
	TypeStatusChange   = "status_change"
	TypeLatencyUpdate  = "latency_update"
	TypeOutageDetected = "outage_detected"
	TypeDiagnostics    = "diagnostics"
)

type Message struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

type SnapshotSource interface {
	Snapshot() monitor.Snapshot
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

// Handler streams bus events to websocket clients. A client that cannot
// keep up loses messages rather than slowing the poll cycle.
type Handler struct {
	bus         *monitor.Bus
	diagnostics *events.Topic[diagnostics.Result]
	source      SnapshotSource
	logger      *zerolog.Logger
}

func NewHandler(bus *monitor.Bus, diag *events.Topic[diagnostics.Result], source SnapshotSource, logger *zerolog.Logger) *Handler {
	return &Handler{
		bus:         bus,
		diagnostics: diag,
		source:      source,
		logger:      logger,
	}
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	h.serve(conn)
}

func (h *Handler) serve(conn *websocket.Conn) {
	defer conn.Close()

	out := make(chan Message, clientBuffer)
	push := func(typ string, data any) {
		select {
		case out <- Message{Type: typ, At: time.Now().UTC(), Data: data}:
		default:
		}
	}

	statusSub := h.bus.StatusChanges.On(func(s monitor.StatusChange) { push(TypeStatusChange, s) })
	latencySub := h.bus.LatencyUpdates.On(func(u monitor.LatencyUpdate) { push(TypeLatencyUpdate, u) })
	outageSub := h.bus.Outages.On(func(o monitor.OutageDetected) { push(TypeOutageDetected, o) })
	var diagSub events.Subscription
	if h.diagnostics != nil {
		diagSub = h.diagnostics.On(func(d diagnostics.Result) { push(TypeDiagnostics, d) })
	}
	defer func() {
		h.bus.StatusChanges.Off(statusSub)
		h.bus.LatencyUpdates.Off(latencySub)
		h.bus.Outages.Off(outageSub)
		if h.diagnostics != nil {
			h.diagnostics.Off(diagSub)
		}
	}()

	if err := write(conn, Message{Type: TypeSnapshot, At: time.Now().UTC(), Data: h.source.Snapshot()}); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case msg := <-out:
			if err := write(conn, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func write(conn *websocket.Conn, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}
