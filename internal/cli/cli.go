// Package cli implements the roomtag command-line interface.
//
// The commands place room labels in a stored project, inspect which rooms
// still lack a label, move projects between snapshot files and database
// stores, and serve placement runs over HTTP.
//
// # Commands
//
//   - tag: Label every unlabeled room of a document
//   - inspect: Show labeled/unlabeled rooms and the level→view map
//   - import, export: Copy documents between snapshot files and stores
//   - history: Manage stored run reports
//   - serve: Run the HTTP surface
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rajithraghunath/roomtag/pkg/buildinfo"
	"github.com/rajithraghunath/roomtag/pkg/config"
	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/history"
	"github.com/rajithraghunath/roomtag/pkg/model"
	"github.com/rajithraghunath/roomtag/pkg/runlock"
	"github.com/rajithraghunath/roomtag/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "roomtag"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config config.Config

	// Interactive reports whether prompts may be shown.
	Interactive bool

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "Roomtag places labels on every unlabeled room of a building model",
		Long:              `Roomtag labels the rooms of a stored building model, including rooms of linked models, in the plan view of each room's level. One run is one transaction: either every label lands or none does.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.configure,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $"+config.EnvPath+" or ~/.config/roomtag/config.toml)")

	root.AddCommand(c.tagCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Store Helpers
// =============================================================================

// openStore opens the store named by arg, falling back to the configured one.
func (c *CLI) openStore(ctx context.Context, arg string) (store.Backend, error) {
	locator := arg
	if locator == "" {
		locator = c.Config.Store
	}
	if locator == "" {
		return nil, rterrors.New(rterrors.ErrCodeInvalidInput, "no store given (pass one or set store in %s)", c.configName())
	}
	return store.Open(ctx, locator)
}

// resolveDocument picks the document to work on: the flag, then the config,
// then the store's first non-linked document.
func (c *CLI) resolveDocument(ctx context.Context, b store.Backend, flag string) (model.DocumentID, error) {
	switch {
	case flag != "":
		return model.DocumentID(flag), nil
	case c.Config.Document != "":
		return model.DocumentID(c.Config.Document), nil
	}
	return store.DefaultDocument(ctx, b)
}

// newLocker returns the run lock configured for this invocation: Redis when an
// address is set, in-process otherwise. The returned func releases the client.
func (c *CLI) newLocker(ctx context.Context) (runlock.Locker, func(), error) {
	if c.Config.Redis.Addr == "" {
		return runlock.NewLocalLocker(c.Config.Redis.LockTTL), func() {}, nil
	}
	l, client, err := runlock.NewRedisLocker(ctx, c.Config.Redis)
	if err != nil {
		return nil, nil, err
	}
	return l, func() { client.Close() }, nil
}

// newHistory returns the report store, or a null store when disabled.
func (c *CLI) newHistory(disabled bool) (history.Store, error) {
	if disabled {
		return history.NullStore{}, nil
	}
	dir, err := c.Config.HistoryPath()
	if err != nil {
		return history.NullStore{}, nil
	}
	return history.NewFileStore(dir)
}

func (c *CLI) configName() string {
	if c.Config.Path != "" {
		return c.Config.Path
	}
	return "the config file"
}
