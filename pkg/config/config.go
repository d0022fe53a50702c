// Package config loads the roomtag configuration file.
//
// The file is TOML, read from $ROOMTAG_CONFIG or
// $XDG_CONFIG_HOME/roomtag/config.toml (~/.config/roomtag/config.toml). A
// missing file is not an error; every key has a default and command-line
// flags override file values.
//
//	store = "project.yaml"
//	document = "tower"
//	tag_style = "Room Tag"
//	include_linked = "ask"     # ask | yes | no
//	where = "area >= 2"
//	history_dir = "~/.cache/roomtag/history"
//
//	[redis]
//	addr = "localhost:6379"
//	lock_ttl = "5m"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/runlock"
)

const appName = "roomtag"

// EnvPath names the environment variable overriding the config file path.
const EnvPath = "ROOMTAG_CONFIG"

// LinkedMode decides whether rooms of linked documents are labeled.
type LinkedMode string

const (
	LinkedAsk LinkedMode = "ask"
	LinkedYes LinkedMode = "yes"
	LinkedNo  LinkedMode = "no"
)

// ParseLinkedMode validates a linked-mode string. Empty means ask.
func ParseLinkedMode(s string) (LinkedMode, error) {
	switch m := LinkedMode(strings.ToLower(s)); m {
	case "":
		return LinkedAsk, nil
	case LinkedAsk, LinkedYes, LinkedNo:
		return m, nil
	}
	return "", rterrors.New(rterrors.ErrCodeInvalidInput, "invalid include_linked %q (want ask, yes or no)", s)
}

// Config is the file content.
type Config struct {
	Store         string     `toml:"store"`
	Document      string     `toml:"document"`
	TagStyle      string     `toml:"tag_style"`
	IncludeLinked LinkedMode `toml:"include_linked"`
	Where         string     `toml:"where"`
	HistoryDir    string     `toml:"history_dir"`

	Redis  runlock.RedisConfig `toml:"redis"`
	Server Server              `toml:"server"`

	// Path is the file the config was read from, empty when defaults were used.
	Path string `toml:"-"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		IncludeLinked: LinkedAsk,
		Redis:         runlock.RedisConfig{LockTTL: runlock.DefaultTTL},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
		},
	}
}

// Path returns the config file location.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file from [Path].
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path over the defaults. A missing file yields
// the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return cfg, rterrors.Wrap(rterrors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, rterrors.New(rterrors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.IncludeLinked, err = ParseLinkedMode(string(cfg.IncludeLinked)); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.HistoryDir = expandHome(cfg.HistoryDir)
	cfg.Path = path
	return cfg, nil
}

// HistoryPath returns the history directory: the configured one, or
// $XDG_CACHE_HOME/roomtag/history (~/.cache/roomtag/history).
func (c Config) HistoryPath() (string, error) {
	if c.HistoryDir != "" {
		return c.HistoryDir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName, "history"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName, "history"), nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
