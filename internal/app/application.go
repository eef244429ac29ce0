// Package app wires the coordinator together and manages its lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"roomcast/internal/api"
	"roomcast/internal/archive"
	"roomcast/internal/config"
	"roomcast/internal/direct"
	"roomcast/internal/hub"
	"roomcast/internal/room"
	"roomcast/internal/session"
	"roomcast/internal/store"
	"roomcast/internal/websocket"
	"roomcast/pkg/interfaces"
)

// Application holds every component. Initialization follows dependency
// order: registries and stores first, then the dispatcher and hub, then the
// transports.
type Application struct {
	cfg     *config.Config
	log     *slog.Logger
	events  *hub.Hub
	arch    *archive.Archive
	httpSrv *http.Server
}

func New(cfg *config.Config, log *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	sessions := session.NewRegistry()
	rooms := room.NewManager(cfg.Chat.Rooms)
	messages := store.New()
	conns := hub.NewRegistry()
	private := direct.NewRouter(sessions)

	var arch *archive.Archive
	var recorder interfaces.Recorder
	if cfg.Archive.Path != "" {
		a, err := archive.Open(cfg.Archive.Path, log)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		arch = a
		recorder = a
	}

	dispatcher := hub.NewDispatcher(hub.Deps{
		Sessions:      sessions,
		Rooms:         rooms,
		Messages:      messages,
		Private:       private,
		Conns:         conns,
		Archive:       recorder,
		Log:           log,
		DefaultRoom:   cfg.Chat.DefaultRoom,
		HistoryWindow: cfg.Chat.HistoryWindow,
	})
	events := hub.NewHub(dispatcher, cfg.Chat.EventBuffer, log)

	wsHandler := websocket.NewHandler(conns, events, websocket.Options{
		PingInterval: cfg.WebSocket.PingInterval,
		ReadTimeout:  cfg.WebSocket.ReadTimeout,
		WriteTimeout: cfg.WebSocket.WriteTimeout,
		BufferSize:   cfg.WebSocket.BufferSize,
	}, log)

	var archAPI api.Archiver
	if arch != nil {
		archAPI = arch
	}
	apiServer := api.NewServer(sessions, rooms, messages, conns, archAPI, cfg, log)

	mux := http.NewServeMux()
	mux.Handle("/ws", wsHandler)
	mux.Handle("/", apiServer)

	return &Application{
		cfg:    cfg,
		log:    log,
		events: events,
		arch:   arch,
		httpSrv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
			Handler:      mux,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
	}, nil
}

// Handler exposes the full HTTP surface, websocket endpoint included.
func (a *Application) Handler() http.Handler {
	return a.httpSrv.Handler
}

func (a *Application) Start(ctx context.Context) error {
	if err := a.events.Start(ctx); err != nil {
		return fmt.Errorf("start hub: %w", err)
	}

	a.log.Info("http server listening", "addr", a.httpSrv.Addr)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("http server failed", "error", err)
		}
	}()
	return nil
}

// Stop shuts everything down in reverse order: HTTP first so no new events
// arrive, then the hub, then the archive.
func (a *Application) Stop(ctx context.Context) error {
	var firstErr error
	if err := a.httpSrv.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := a.events.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	if a.arch != nil {
		if err := a.arch.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Hub exposes the event hub for integration tests.
func (a *Application) Hub() *hub.Hub {
	return a.events
}
