package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rajithraghunath/roomtag/pkg/history"
)

// historyCommand creates the history management command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage recorded run reports",
	}

	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyClearCommand())
	cmd.AddCommand(c.historyPathCommand())

	return cmd
}

// historyShowCommand creates the "history show" subcommand.
func (c *CLI) historyShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := c.fileHistory()
			if err != nil {
				return err
			}
			entries, err := hist.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				printInfo("No runs recorded")
				return nil
			}
			for _, e := range entries {
				if e.Report == nil {
					continue
				}
				printKeyValue(e.SavedAt.Local().Format("Jan 2 15:04"), e.Document+" "+StyleDim.Render(e.Store))
				printStats(
					"placed "+strconv.Itoa(e.Report.Placed),
					"skipped "+strconv.Itoa(len(e.Report.Skips)),
					"remaining "+strconv.Itoa(e.Report.Remaining),
				)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

// historyClearCommand creates the "history clear" subcommand.
func (c *CLI) historyClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := c.fileHistory()
			if err != nil {
				return err
			}
			n, err := hist.Clear(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("History is empty")
				return nil
			}
			printSuccess("Cleared %d recorded runs", n)
			printDetail("Directory: %s", hist.Dir())
			return nil
		},
	}
}

// historyPathCommand creates the "history path" subcommand.
func (c *CLI) historyPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the history directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.Config.HistoryPath()
			if err != nil {
				return fmt.Errorf("get history dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

func (c *CLI) fileHistory() (*history.FileStore, error) {
	dir, err := c.Config.HistoryPath()
	if err != nil {
		return nil, fmt.Errorf("get history dir: %w", err)
	}
	return history.NewFileStore(dir)
}
