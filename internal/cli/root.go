package cli

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/rajithraghunath/roomtag/pkg/config"
	"github.com/rajithraghunath/roomtag/pkg/observability"
)

// configure runs before every command. It loads the config file, decides
// whether prompts are possible, attaches the logger to the command context,
// and routes observability hooks to the logger at debug level.
func (c *CLI) configure(cmd *cobra.Command, args []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Interactive = isTerminal()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))

	if c.Logger.GetLevel() <= log.DebugLevel {
		hooks := &logHooks{logger: c.Logger}
		observability.SetPlacementHooks(hooks)
		observability.SetStoreHooks(hooks)
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return nil
}

func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath != "" {
		return config.LoadFile(c.configPath)
	}
	return config.Load()
}

// isTerminal reports whether both stdin and stdout are attached to a terminal.
func isTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}
