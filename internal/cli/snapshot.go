package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/snapshot"
)

// importCommand creates the import command, which copies every document of a
// snapshot file into a store. Documents with the same id are replaced.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot> [store]",
		Short: "Copy documents from a snapshot file into a store",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			s, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			var locator string
			if len(args) == 2 {
				locator = args[1]
			}
			b, err := c.openStoreProgress(ctx, locator)
			if err != nil {
				return err
			}
			defer b.Close(context.WithoutCancel(ctx))

			if err := b.Import(ctx, s.Documents...); err != nil {
				return err
			}
			prog.done("Imported snapshot")

			printSuccess("Imported %d documents into %s", len(s.Documents), b.Locator())
			for _, d := range s.Documents {
				printDetail("%s: %d rooms, %d tags, %d views, %d links", d.ID, len(d.Rooms), len(d.Tags), len(d.Views), len(d.Links))
			}
			return nil
		},
	}
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export [store]",
		Short: "Write every document of a store to a snapshot file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var locator string
			if len(args) == 1 {
				locator = args[0]
			}
			b, err := c.openStoreProgress(ctx, locator)
			if err != nil {
				return err
			}
			defer b.Close(context.WithoutCancel(ctx))

			docs, err := b.Export(ctx)
			if err != nil {
				return err
			}
			s := &snapshot.Snapshot{Documents: docs}

			if output == "" {
				f, err := parseSnapshotFormat(format)
				if err != nil {
					return err
				}
				return snapshot.Write(os.Stdout, f, s)
			}
			if err := snapshot.Save(output, s); err != nil {
				return err
			}
			printSuccess("Exported %d documents", len(docs))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; the format follows its extension (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "stdout format: json, yaml, toml")
	return cmd
}

// parseSnapshotFormat validates the --format flag.
func parseSnapshotFormat(s string) (snapshot.Format, error) {
	switch f := snapshot.Format(s); f {
	case snapshot.FormatJSON, snapshot.FormatYAML, snapshot.FormatTOML:
		return f, nil
	}
	return "", rterrors.New(rterrors.ErrCodeInvalidFormat, "invalid format: %s (must be 'json', 'yaml' or 'toml')", s)
}
