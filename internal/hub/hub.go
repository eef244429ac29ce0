// Package hub is the coordinator's single entry and exit point: every
// inbound event passes through one event-loop goroutine, which gives a total
// order over all state mutations and preserves per-connection FIFO ordering.
package hub

import (
	"context"
	"log/slog"
	"sync"

	"roomcast/internal/metrics"
	"roomcast/pkg/interfaces"
	"roomcast/pkg/types"
)

// Event is one unit of inbound work: a decoded client frame with the
// connection it arrived on.
type Event struct {
	Conn  interfaces.Connection
	Frame types.Inbound
}

// Hub drains events, connection openings and connection closings through a
// single goroutine into the dispatcher. Once an event is accepted it runs to
// completion; there is no cancellation of individual events.
type Hub struct {
	eventChannel      chan *Event
	registerChannel   chan interfaces.Connection
	unregisterChannel chan string
	shutdownChannel   chan struct{}

	dispatcher *Dispatcher
	log        *slog.Logger

	running bool
	mu      sync.RWMutex
}

func NewHub(dispatcher *Dispatcher, eventBuffer int, log *slog.Logger) *Hub {
	if eventBuffer <= 0 {
		eventBuffer = 1024
	}
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		eventChannel:      make(chan *Event, eventBuffer),
		registerChannel:   make(chan interfaces.Connection, 64),
		unregisterChannel: make(chan string, 64),
		shutdownChannel:   make(chan struct{}),
		dispatcher:        dispatcher,
		log:               log,
	}
}

func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return ErrHubAlreadyRunning
	}
	h.running = true
	h.mu.Unlock()

	h.log.Info("starting event hub")
	go h.run(ctx)
	return nil
}

func (h *Hub) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return ErrHubNotRunning
	}
	h.running = false

	h.log.Info("stopping event hub")
	select {
	case <-h.shutdownChannel:
	default:
		close(h.shutdownChannel)
	}
	return nil
}

// Enqueue queues an inbound frame for dispatch. Frames from one connection
// are enqueued by its read pump in read order, which is what preserves
// per-connection FIFO.
func (h *Hub) Enqueue(conn interfaces.Connection, frame types.Inbound) error {
	if conn == nil {
		return ErrNilConnection
	}
	if err := h.ensureRunning(); err != nil {
		return err
	}

	select {
	case h.eventChannel <- &Event{Conn: conn, Frame: frame}:
		return nil
	default:
		metrics.DroppedEvents.Inc()
		return ErrEventChannelFull
	}
}

// ConnectionOpened reports a new transport connection.
func (h *Hub) ConnectionOpened(conn interfaces.Connection) error {
	if err := h.ensureRunning(); err != nil {
		return err
	}

	select {
	case h.registerChannel <- conn:
		return nil
	default:
		return ErrRegisterChannelFull
	}
}

// ConnectionClosed reports a dropped transport connection; the dispatcher
// raises the disconnect event for it.
func (h *Hub) ConnectionClosed(connID string) error {
	if err := h.ensureRunning(); err != nil {
		return err
	}

	select {
	case h.unregisterChannel <- connID:
		return nil
	default:
		return ErrUnregisterChannelFull
	}
}

func (h *Hub) ensureRunning() error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.running {
		return ErrHubNotRunning
	}
	return nil
}

func (h *Hub) run(ctx context.Context) {
	defer h.log.Info("event hub stopped")

	for {
		select {
		case ev := <-h.eventChannel:
			h.dispatcher.Handle(ev.Conn, ev.Frame)

		case conn := <-h.registerChannel:
			if conn == nil {
				continue
			}
			metrics.ActiveConnections.Inc()
			h.log.Info("connection opened", "conn", conn.ID())

		case connID := <-h.unregisterChannel:
			metrics.ActiveConnections.Dec()
			h.dispatcher.Disconnect(connID)

		case <-h.shutdownChannel:
			return

		case <-ctx.Done():
			return
		}
	}
}
