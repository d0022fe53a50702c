package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileMissing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.IncludeLinked != LinkedAsk || cfg.Server.Addr != ":8080" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
store = "project.yaml"
document = "tower"
include_linked = "No"
where = "area > 2"

[redis]
addr = "localhost:6379"
db = 2
lock_ttl = "90s"

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store != "project.yaml" || cfg.Document != "tower" || cfg.Where != "area > 2" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.IncludeLinked != LinkedNo {
		t.Errorf("IncludeLinked = %q, want no", cfg.IncludeLinked)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 || cfg.Redis.LockTTL != 90*time.Second {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `store = `},
		{"unknown key", `stroe = "x"`},
		{"bad linked mode", `include_linked = "maybe"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			if !rterrors.Is(err, rterrors.ErrCodeInvalidInput) {
				t.Errorf("LoadFile error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "/etc/roomtag.toml")
	if p, _ := Path(); p != "/etc/roomtag.toml" {
		t.Errorf("Path with %s = %q", EnvPath, p)
	}

	t.Setenv(EnvPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if p, _ := Path(); p != filepath.Join("/xdg", "roomtag", "config.toml") {
		t.Errorf("Path with XDG_CONFIG_HOME = %q", p)
	}
}

func TestHistoryPath(t *testing.T) {
	cfg := Default()
	cfg.HistoryDir = "/tmp/h"
	if p, _ := cfg.HistoryPath(); p != "/tmp/h" {
		t.Errorf("HistoryPath = %q, want /tmp/h", p)
	}

	t.Setenv("XDG_CACHE_HOME", "/cache")
	if p, _ := Default().HistoryPath(); p != filepath.Join("/cache", "roomtag", "history") {
		t.Errorf("HistoryPath = %q", p)
	}
}

func TestParseLinkedMode(t *testing.T) {
	tests := []struct {
		in   string
		want LinkedMode
		ok   bool
	}{
		{"", LinkedAsk, true},
		{"ask", LinkedAsk, true},
		{"YES", LinkedYes, true},
		{"no", LinkedNo, true},
		{"sometimes", "", false},
	}
	for _, tt := range tests {
		got, err := ParseLinkedMode(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseLinkedMode(%q) = %q, %v, want %q ok=%v", tt.in, got, err, tt.want, tt.ok)
		}
	}
}
