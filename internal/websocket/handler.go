package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"roomcast/internal/hub"
	"roomcast/pkg/types"
)

var upgrader = websocket.Upgrader{
	// Origins are not restricted; the coordinator does no authentication.
	CheckOrigin:      func(r *http.Request) bool { return true },
	HandshakeTimeout: 10 * time.Second,
}

// Options carries the transport timeouts and buffer sizing.
type Options struct {
	PingInterval time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BufferSize   int
}

// Handler upgrades HTTP requests and pumps decoded events into the hub. A
// connection carries no identity until its join event registers a session.
type Handler struct {
	registry *hub.Registry
	events   *hub.Hub
	opts     Options
	log      *slog.Logger
}

func NewHandler(registry *hub.Registry, events *hub.Hub, opts Options, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{registry: registry, events: events, opts: opts, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	conn := NewConnection(uuid.NewString(), wsConn, h.opts.BufferSize, h.opts.WriteTimeout)
	if err := h.registry.Register(conn); err != nil {
		h.log.Warn("connection registration failed", "error", err)
		_ = conn.Close()
		return
	}
	if err := h.events.ConnectionOpened(conn); err != nil {
		h.log.Warn("hub rejected connection", "conn", conn.ID(), "error", err)
		h.registry.Unregister(conn)
		_ = conn.Close()
		return
	}

	go h.readPump(conn)
}

// readPump reads frames until the connection dies, forwarding each decoded
// event to the hub in read order.
func (h *Handler) readPump(conn *Connection) {
	defer func() {
		if err := h.events.ConnectionClosed(conn.ID()); err != nil {
			h.log.Warn("disconnect not delivered", "conn", conn.ID(), "error", err)
		}
		h.registry.Unregister(conn)
		_ = conn.Close()
	}()

	ws := conn.conn
	_ = ws.SetReadDeadline(time.Now().Add(h.opts.ReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.opts.ReadTimeout))
	})

	ticker := time.NewTicker(h.opts.PingInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.opts.WriteTimeout)); err != nil {
					return
				}
			case <-conn.ctx.Done():
				return
			}
		}
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read failed", "conn", conn.ID(), "error", err)
			}
			return
		}

		var frame types.Inbound
		if err := json.Unmarshal(data, &frame); err != nil {
			h.log.Debug("dropping malformed frame", "conn", conn.ID(), "error", err)
			continue
		}
		if err := h.events.Enqueue(conn, frame); err != nil {
			h.log.Warn("event dropped", "conn", conn.ID(), "type", frame.Type, "error", err)
		}
	}
}
