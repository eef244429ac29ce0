// Package config carries all runtime settings for the coordinator.
// Precedence: config file > environment > defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
)

type Config struct {
	HTTP      *HTTPConfig
	WebSocket *WebSocketConfig
	Chat      *ChatConfig
	Archive   *ArchiveConfig
	Upload    *UploadConfig
}

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type WebSocketConfig struct {
	PingInterval time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BufferSize   int
}

type ChatConfig struct {
	Rooms         []string
	DefaultRoom   string
	HistoryWindow int
	PageSize      int
	EventBuffer   int
}

// ArchiveConfig points at the SQLite message archive. An empty path
// disables archiving entirely.
type ArchiveConfig struct {
	Path string
}

type UploadConfig struct {
	Dir     string
	MaxSize int64
}

func DefaultConfig() *Config {
	return &Config{
		HTTP: &HTTPConfig{
			Host:         "0.0.0.0",
			Port:         5000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		WebSocket: &WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 10 * time.Second,
			BufferSize:   100,
		},
		Chat: &ChatConfig{
			Rooms:         []string{"general", "random", "tech"},
			DefaultRoom:   "general",
			HistoryWindow: 20,
			PageSize:      20,
			EventBuffer:   1024,
		},
		Archive: &ArchiveConfig{Path: ""},
		Upload:  &UploadConfig{Dir: "./uploads", MaxSize: 10 << 20},
	}
}

// environment is the flat env-var view of the config; zero values mean the
// variable was unset and the default stays.
type environment struct {
	Host           string        `env:"ROOMCAST_HOST"`
	Port           int           `env:"ROOMCAST_PORT"`
	ReadTimeout    time.Duration `env:"ROOMCAST_HTTP_READ_TIMEOUT"`
	WriteTimeout   time.Duration `env:"ROOMCAST_HTTP_WRITE_TIMEOUT"`
	PingInterval   time.Duration `env:"ROOMCAST_WS_PING_INTERVAL"`
	WSReadTimeout  time.Duration `env:"ROOMCAST_WS_READ_TIMEOUT"`
	WSWriteTimeout time.Duration `env:"ROOMCAST_WS_WRITE_TIMEOUT"`
	BufferSize     int           `env:"ROOMCAST_WS_BUFFER_SIZE"`
	Rooms          string        `env:"ROOMCAST_ROOMS"`
	DefaultRoom    string        `env:"ROOMCAST_DEFAULT_ROOM"`
	HistoryWindow  int           `env:"ROOMCAST_HISTORY_WINDOW"`
	PageSize       int           `env:"ROOMCAST_PAGE_SIZE"`
	EventBuffer    int           `env:"ROOMCAST_EVENT_BUFFER"`
	ArchivePath    string        `env:"ROOMCAST_ARCHIVE_PATH"`
	UploadDir      string        `env:"ROOMCAST_UPLOAD_DIR"`
	UploadMaxSize  int64         `env:"ROOMCAST_UPLOAD_MAX_SIZE"`
}

// LoadFromEnv returns the defaults with environment overrides applied.
// ROOMCAST_ROOMS is a comma-separated list.
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	var e environment
	if _, err := env.UnmarshalFromEnviron(&e); err != nil {
		return cfg
	}

	if e.Host != "" {
		cfg.HTTP.Host = e.Host
	}
	if e.Port > 0 {
		cfg.HTTP.Port = e.Port
	}
	if e.ReadTimeout > 0 {
		cfg.HTTP.ReadTimeout = e.ReadTimeout
	}
	if e.WriteTimeout > 0 {
		cfg.HTTP.WriteTimeout = e.WriteTimeout
	}
	if e.PingInterval > 0 {
		cfg.WebSocket.PingInterval = e.PingInterval
	}
	if e.WSReadTimeout > 0 {
		cfg.WebSocket.ReadTimeout = e.WSReadTimeout
	}
	if e.WSWriteTimeout > 0 {
		cfg.WebSocket.WriteTimeout = e.WSWriteTimeout
	}
	if e.BufferSize > 0 {
		cfg.WebSocket.BufferSize = e.BufferSize
	}
	if e.Rooms != "" {
		cfg.Chat.Rooms = splitRooms(e.Rooms)
	}
	if e.DefaultRoom != "" {
		cfg.Chat.DefaultRoom = e.DefaultRoom
	}
	if e.HistoryWindow > 0 {
		cfg.Chat.HistoryWindow = e.HistoryWindow
	}
	if e.PageSize > 0 {
		cfg.Chat.PageSize = e.PageSize
	}
	if e.EventBuffer > 0 {
		cfg.Chat.EventBuffer = e.EventBuffer
	}
	if e.ArchivePath != "" {
		cfg.Archive.Path = e.ArchivePath
	}
	if e.UploadDir != "" {
		cfg.Upload.Dir = e.UploadDir
	}
	if e.UploadMaxSize > 0 {
		cfg.Upload.MaxSize = e.UploadMaxSize
	}
	return cfg
}

// fileConfig is the JSON form; durations are strings like "30s".
type fileConfig struct {
	HTTP *struct {
		Host         string `json:"host"`
		Port         int    `json:"port"`
		ReadTimeout  string `json:"read_timeout"`
		WriteTimeout string `json:"write_timeout"`
	} `json:"http"`
	WebSocket *struct {
		PingInterval string `json:"ping_interval"`
		ReadTimeout  string `json:"read_timeout"`
		WriteTimeout string `json:"write_timeout"`
		BufferSize   int    `json:"buffer_size"`
	} `json:"websocket"`
	Chat *struct {
		Rooms         []string `json:"rooms"`
		DefaultRoom   string   `json:"default_room"`
		HistoryWindow int      `json:"history_window"`
		PageSize      int      `json:"page_size"`
		EventBuffer   int      `json:"event_buffer"`
	} `json:"chat"`
	Archive *struct {
		Path string `json:"path"`
	} `json:"archive"`
	Upload *struct {
		Dir     string `json:"dir"`
		MaxSize int64  `json:"max_size"`
	} `json:"upload"`
}

// LoadFromFile layers a JSON file over the env-derived config.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg := LoadFromEnv()
	if fc.HTTP != nil {
		if fc.HTTP.Host != "" {
			cfg.HTTP.Host = fc.HTTP.Host
		}
		if fc.HTTP.Port > 0 {
			cfg.HTTP.Port = fc.HTTP.Port
		}
		applyDuration(&cfg.HTTP.ReadTimeout, fc.HTTP.ReadTimeout)
		applyDuration(&cfg.HTTP.WriteTimeout, fc.HTTP.WriteTimeout)
	}
	if fc.WebSocket != nil {
		applyDuration(&cfg.WebSocket.PingInterval, fc.WebSocket.PingInterval)
		applyDuration(&cfg.WebSocket.ReadTimeout, fc.WebSocket.ReadTimeout)
		applyDuration(&cfg.WebSocket.WriteTimeout, fc.WebSocket.WriteTimeout)
		if fc.WebSocket.BufferSize > 0 {
			cfg.WebSocket.BufferSize = fc.WebSocket.BufferSize
		}
	}
	if fc.Chat != nil {
		if len(fc.Chat.Rooms) > 0 {
			cfg.Chat.Rooms = fc.Chat.Rooms
		}
		if fc.Chat.DefaultRoom != "" {
			cfg.Chat.DefaultRoom = fc.Chat.DefaultRoom
		}
		if fc.Chat.HistoryWindow > 0 {
			cfg.Chat.HistoryWindow = fc.Chat.HistoryWindow
		}
		if fc.Chat.PageSize > 0 {
			cfg.Chat.PageSize = fc.Chat.PageSize
		}
		if fc.Chat.EventBuffer > 0 {
			cfg.Chat.EventBuffer = fc.Chat.EventBuffer
		}
	}
	if fc.Archive != nil {
		cfg.Archive.Path = fc.Archive.Path
	}
	if fc.Upload != nil {
		if fc.Upload.Dir != "" {
			cfg.Upload.Dir = fc.Upload.Dir
		}
		if fc.Upload.MaxSize > 0 {
			cfg.Upload.MaxSize = fc.Upload.MaxSize
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// Load applies the file > environment > defaults precedence. A missing or
// broken file falls back to the env-derived config.
func Load(path string) *Config {
	if path != "" {
		if cfg, err := LoadFromFile(path); err == nil {
			return cfg
		}
	}
	return LoadFromEnv()
}

func (c *Config) Validate() error {
	if c.HTTP == nil || c.WebSocket == nil || c.Chat == nil || c.Archive == nil || c.Upload == nil {
		return fmt.Errorf("configuration sections must not be nil")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port must be between 1 and 65535")
	}
	if c.HTTP.Host == "" {
		return fmt.Errorf("http host cannot be empty")
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("http timeouts must be positive")
	}
	if c.WebSocket.PingInterval <= 0 || c.WebSocket.ReadTimeout <= 0 || c.WebSocket.WriteTimeout <= 0 {
		return fmt.Errorf("websocket intervals must be positive")
	}
	if c.WebSocket.BufferSize <= 0 {
		return fmt.Errorf("websocket buffer size must be positive")
	}
	if len(c.Chat.Rooms) == 0 {
		return fmt.Errorf("at least one room is required")
	}
	for _, name := range c.Chat.Rooms {
		if name == "" {
			return fmt.Errorf("room names cannot be empty")
		}
	}
	defaultKnown := false
	for _, name := range c.Chat.Rooms {
		if name == c.Chat.DefaultRoom {
			defaultKnown = true
			break
		}
	}
	if !defaultKnown {
		return fmt.Errorf("default room %q is not in the room list", c.Chat.DefaultRoom)
	}
	if c.Chat.HistoryWindow <= 0 {
		return fmt.Errorf("history window must be positive")
	}
	if c.Chat.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.Chat.EventBuffer <= 0 {
		return fmt.Errorf("event buffer must be positive")
	}
	if c.Upload.Dir == "" {
		return fmt.Errorf("upload dir cannot be empty")
	}
	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("upload max size must be positive")
	}
	return nil
}

func splitRooms(raw string) []string {
	var rooms []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			rooms = append(rooms, name)
		}
	}
	return rooms
}

func applyDuration(dst *time.Duration, raw string) {
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil {
		*dst = d
	}
}
