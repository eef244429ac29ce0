package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	req := require.New(t)
	cfg := DefaultConfig()

	req.NoError(cfg.Validate())
	req.Equal(5000, cfg.HTTP.Port)
	req.Equal([]string{"general", "random", "tech"}, cfg.Chat.Rooms)
	req.Equal("general", cfg.Chat.DefaultRoom)
	req.Equal(20, cfg.Chat.HistoryWindow)
	req.Equal(20, cfg.Chat.PageSize)
	req.Empty(cfg.Archive.Path)
}

func TestLoadFromEnv(t *testing.T) {
	req := require.New(t)
	t.Setenv("ROOMCAST_PORT", "8080")
	t.Setenv("ROOMCAST_ROOMS", "alpha, beta ,gamma")
	t.Setenv("ROOMCAST_DEFAULT_ROOM", "beta")
	t.Setenv("ROOMCAST_WS_PING_INTERVAL", "15s")
	t.Setenv("ROOMCAST_ARCHIVE_PATH", "/tmp/archive.db")

	cfg := LoadFromEnv()
	req.Equal(8080, cfg.HTTP.Port)
	req.Equal([]string{"alpha", "beta", "gamma"}, cfg.Chat.Rooms)
	req.Equal("beta", cfg.Chat.DefaultRoom)
	req.Equal(15*time.Second, cfg.WebSocket.PingInterval)
	req.Equal("/tmp/archive.db", cfg.Archive.Path)

	// Untouched settings keep their defaults.
	req.Equal("0.0.0.0", cfg.HTTP.Host)
	req.Equal(20, cfg.Chat.PageSize)
}

func TestLoadFromFile(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"http": {"port": 9000, "read_timeout": "45s"},
		"chat": {"rooms": ["lobby", "dev"], "default_room": "lobby", "page_size": 50},
		"archive": {"path": "/tmp/roomcast.db"}
	}`
	req.NoError(os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFromFile(path)
	req.NoError(err)
	req.Equal(9000, cfg.HTTP.Port)
	req.Equal(45*time.Second, cfg.HTTP.ReadTimeout)
	req.Equal([]string{"lobby", "dev"}, cfg.Chat.Rooms)
	req.Equal(50, cfg.Chat.PageSize)
	req.Equal("/tmp/roomcast.db", cfg.Archive.Path)
	req.Equal(30*time.Second, cfg.HTTP.WriteTimeout)
}

func TestLoadFromFile_OverridesEnv(t *testing.T) {
	req := require.New(t)
	t.Setenv("ROOMCAST_PORT", "8080")

	path := filepath.Join(t.TempDir(), "config.json")
	req.NoError(os.WriteFile(path, []byte(`{"http": {"port": 9000}}`), 0o644))

	cfg, err := LoadFromFile(path)
	req.NoError(err)
	req.Equal(9000, cfg.HTTP.Port)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoadFromFile_InvalidConfigRejected(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.json")
	req.NoError(os.WriteFile(path, []byte(`{"chat": {"default_room": "nope"}}`), 0o644))

	_, err := LoadFromFile(path)
	req.Error(err)
}

func TestLoad_FallsBackWithoutFile(t *testing.T) {
	req := require.New(t)
	t.Setenv("ROOMCAST_PORT", "8080")

	cfg := Load("")
	req.Equal(8080, cfg.HTTP.Port)

	cfg = Load(filepath.Join(t.TempDir(), "absent.json"))
	req.Equal(8080, cfg.HTTP.Port)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }},
		{"empty host", func(c *Config) { c.HTTP.Host = "" }},
		{"zero read timeout", func(c *Config) { c.HTTP.ReadTimeout = 0 }},
		{"zero ping interval", func(c *Config) { c.WebSocket.PingInterval = 0 }},
		{"no rooms", func(c *Config) { c.Chat.Rooms = nil }},
		{"empty room name", func(c *Config) { c.Chat.Rooms = []string{"general", ""} }},
		{"default room unknown", func(c *Config) { c.Chat.DefaultRoom = "nope" }},
		{"zero history window", func(c *Config) { c.Chat.HistoryWindow = 0 }},
		{"zero page size", func(c *Config) { c.Chat.PageSize = 0 }},
		{"zero event buffer", func(c *Config) { c.Chat.EventBuffer = 0 }},
		{"empty upload dir", func(c *Config) { c.Upload.Dir = "" }},
		{"nil section", func(c *Config) { c.Archive = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
