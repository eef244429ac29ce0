// Package api is the REST surface around the coordinator: message history
// pagination, session listing, file upload, health and metrics. It holds no
// business logic, only HTTP handling and JSON serialization.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roomcast/internal/config"
	"roomcast/internal/hub"
	"roomcast/internal/room"
	"roomcast/internal/session"
	"roomcast/internal/store"
	"roomcast/pkg/types"
)

// Archiver is the slice of the archive the API needs; nil when archiving is
// disabled.
type Archiver interface {
	HealthCheck(ctx context.Context) error
}

type Server struct {
	sessions *session.Registry
	rooms    *room.Manager
	messages *store.Store
	conns    *hub.Registry
	archive  Archiver
	cfg      *config.Config
	log      *slog.Logger
	mux      *http.ServeMux
}

func NewServer(sessions *session.Registry, rooms *room.Manager, messages *store.Store, conns *hub.Registry, archive Archiver, cfg *config.Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		sessions: sessions,
		rooms:    rooms,
		messages: messages,
		conns:    conns,
		archive:  archive,
		cfg:      cfg,
		log:      log,
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.Handle("/api/messages/", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.handleMessages))))
	s.mux.Handle("/api/users", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.handleUsers))))
	s.mux.Handle("/api/rooms", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.handleRooms))))
	s.mux.Handle("/upload", s.corsMiddleware(http.HandlerFunc(s.handleUpload)))
	s.mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.cfg.Upload.Dir))))
	s.mux.Handle("/health", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.handleHealth))))
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// MessagesResponse is the pagination reply: page 1 is the first pageSize
// messages, hasMore reports whether anything follows the requested page.
type MessagesResponse struct {
	Messages []*types.Message `json:"messages"`
	HasMore  bool             `json:"hasMore"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type UploadResponse struct {
	FileURL string `json:"fileUrl"`
}

type HealthResponse struct {
	Status      string         `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
	Archive     string         `json:"archive"`
	Connections map[string]int `json:"connections"`
}

// GET /api/messages/{room}?page=&limit=
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/messages/")
	name = strings.Split(name, "/")[0]
	if name == "" {
		s.sendError(w, "Room name required", http.StatusBadRequest)
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", s.cfg.Chat.PageSize)

	messages, hasMore := s.messages.Page(name, page, limit)
	s.writeJSON(w, MessagesResponse{Messages: messages, HasMore: hasMore})
}

// GET /api/users
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.sessions.List())
}

// GET /api/rooms
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.rooms.Rooms())
}

// POST /upload accepts one multipart file and returns the opaque URL the
// coordinator will store verbatim on messages.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.sendError(w, "No file uploaded.", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if err := os.MkdirAll(s.cfg.Upload.Dir, 0o755); err != nil {
		s.sendError(w, "Upload storage unavailable", http.StatusInternalServerError)
		return
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(header.Filename))
	dst, err := os.Create(filepath.Join(s.cfg.Upload.Dir, name))
	if err != nil {
		s.sendError(w, "Upload storage unavailable", http.StatusInternalServerError)
		return
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, file); err != nil {
		s.sendError(w, "Upload failed", http.StatusInternalServerError)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	w.Header().Set("Content-Type", "application/json")
	s.writeJSON(w, UploadResponse{
		FileURL: fmt.Sprintf("%s://%s/uploads/%s", scheme, r.Host, name),
	})
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	archiveStatus := "disabled"
	if s.archive != nil {
		archiveStatus = "healthy"
		if err := s.archive.HealthCheck(ctx); err != nil {
			status = "unhealthy"
			archiveStatus = fmt.Sprintf("error: %v", err)
		}
	}

	resp := HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Archive:   archiveStatus,
		Connections: map[string]int{
			"connections": s.conns.Len(),
			"sessions":    s.sessions.Len(),
			"rooms":       len(s.rooms.Rooms()),
		},
	}
	if status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	_, _ = fmt.Fprint(w, "Roomcast coordinator is running")
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("response encoding failed", "error", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	s.writeJSON(w, ErrorResponse{
		Error:   http.StatusText(code),
		Code:    code,
		Message: message,
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
