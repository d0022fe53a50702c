package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rajithraghunath/roomtag/internal/server"
)

// serveCommand creates the serve command, which exposes placement runs over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "serve [store]",
		Short: "Serve placement runs over HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var locator string
			if len(args) == 1 {
				locator = args[0]
			}
			b, err := c.openStore(ctx, locator)
			if err != nil {
				return err
			}
			defer b.Close(context.WithoutCancel(ctx))

			locker, release, err := c.newLocker(ctx)
			if err != nil {
				return err
			}
			defer release()

			hist, err := c.newHistory(noHistory)
			if err != nil {
				return err
			}

			srv := server.New(server.Config{
				Backend: b,
				Locker:  locker,
				History: hist,
				Logger:  loggerFromContext(ctx),
			})
			cfg := c.Config.Server
			return srv.ListenAndServe(ctx, firstNonEmpty(addr, cfg.Addr), cfg.ReadTimeout, cfg.WriteTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record run reports")
	return cmd
}
