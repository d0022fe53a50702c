package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rajithraghunath/roomtag/pkg/config"
	"github.com/rajithraghunath/roomtag/pkg/placement"
	"github.com/rajithraghunath/roomtag/pkg/render/plan"
	"github.com/rajithraghunath/roomtag/pkg/runlock"
	"github.com/rajithraghunath/roomtag/pkg/store"
)

// linkedQuestion is the prompt shown when include_linked is "ask".
const linkedQuestion = "Include rooms from linked models?"

// tagOpts holds the command-line flags for the tag command.
// Empty strings fall back to the config file.
type tagOpts struct {
	store     string // store locator (positional)
	document  string // primary document id
	linked    string // ask, yes or no
	style     string // tag style id or name
	where     string // room filter expression
	dryRun    bool   // plan labels without creating them
	preview   string // write a placement preview (.svg or .dot)
	noHistory bool   // do not record the run report
}

// tagCommand creates the tag command, the one user-facing placement action.
func (c *CLI) tagCommand() *cobra.Command {
	var opts tagOpts

	cmd := &cobra.Command{
		Use:   "tag [store]",
		Short: "Place a tag on every unlabeled room",
		Long: `Place a room tag on every taggable room of the primary document that has none yet,
in the plan view of the room's level. Rooms of linked models are included on request and
positioned through each link's transform.

The store is a snapshot file (.json, .yaml, .toml), sqlite://path.db or mongodb://host/db.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.store = args[0]
			}
			report, locator, err := c.runTag(cmd.Context(), opts)
			if err != nil {
				return err
			}
			c.printReport(report, locator, opts)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.document, "doc", "d", "", "primary document id (default: first non-linked document)")
	cmd.Flags().StringVar(&opts.linked, "linked", "", "include rooms from linked models: ask (default), yes, no")
	cmd.Flags().StringVar(&opts.style, "style", "", "tag style id or name (default: first loaded style)")
	cmd.Flags().StringVar(&opts.where, "where", "", "only tag rooms matching this expression, e.g. 'area >= 10 && !linked'")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "compute placements without creating tags")
	cmd.Flags().StringVar(&opts.preview, "preview", "", "write a placement preview (.svg or .dot)")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record the run report")

	return cmd
}

// runTag resolves options, opens the store and runs one placement under the
// document's run lock. It returns the report and the store locator.
func (c *CLI) runTag(ctx context.Context, opts tagOpts) (*placement.Report, string, error) {
	logger := loggerFromContext(ctx)

	mode, err := config.ParseLinkedMode(firstNonEmpty(opts.linked, string(c.Config.IncludeLinked)))
	if err != nil {
		return nil, "", err
	}
	popts := placement.Options{
		TagStyle: firstNonEmpty(opts.style, c.Config.TagStyle),
		Where:    firstNonEmpty(opts.where, c.Config.Where),
		DryRun:   opts.dryRun,
		Logger:   logger,
	}
	if err := popts.Validate(); err != nil {
		return nil, "", err
	}

	b, err := c.openStoreProgress(ctx, opts.store)
	if err != nil {
		return nil, "", err
	}
	defer b.Close(context.WithoutCancel(ctx))

	doc, err := c.resolveDocument(ctx, b, opts.document)
	if err != nil {
		return nil, "", err
	}
	if popts.IncludeLinked, err = c.includeLinked(ctx, mode, logger); err != nil {
		return nil, "", err
	}

	locker, release, err := c.newLocker(ctx)
	if err != nil {
		return nil, "", err
	}
	defer release()

	hist, err := c.newHistory(opts.noHistory || opts.dryRun)
	if err != nil {
		return nil, "", err
	}

	prog := newProgress(logger)
	var report *placement.Report
	err = runlock.WithLock(ctx, locker, string(doc), func(ctx context.Context) error {
		m, err := b.Model(ctx, doc)
		if err != nil {
			return err
		}
		report, err = placement.NewRunner(logger).PlaceAll(ctx, m, popts)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	prog.done(fmt.Sprintf("Tagged document %s", doc))

	if err := hist.Save(ctx, b.Locator(), string(doc), report); err != nil {
		logger.Warn("save history", "err", err)
	}
	if opts.preview != "" {
		if err := writePreview(ctx, report, opts.preview); err != nil {
			return nil, "", err
		}
	}
	return report, b.Locator(), nil
}

// openStoreProgress opens the store, showing a spinner on a terminal.
func (c *CLI) openStoreProgress(ctx context.Context, arg string) (store.Backend, error) {
	if !c.Interactive {
		return c.openStore(ctx, arg)
	}
	s := newSpinnerWithContext(ctx, "Opening store...")
	s.Start()
	b, err := c.openStore(ctx, arg)
	s.Stop()
	return b, err
}

// includeLinked turns the linked mode into a decision. "ask" prompts on a
// terminal and means yes everywhere else.
func (c *CLI) includeLinked(ctx context.Context, mode config.LinkedMode, logger *log.Logger) (bool, error) {
	switch mode {
	case config.LinkedYes:
		return true, nil
	case config.LinkedNo:
		return false, nil
	}
	if !c.Interactive {
		logger.Debug("no terminal, including linked models")
		return true, nil
	}
	return confirm(ctx, linkedQuestion, true)
}

// writePreview renders the report's placements to path. A .dot path gets the
// Graphviz source, anything else an SVG.
func writePreview(ctx context.Context, report *placement.Report, path string) error {
	dot := plan.ToDOT(report, plan.Options{Labels: true})
	if strings.EqualFold(filepath.Ext(path), ".dot") {
		return os.WriteFile(path, []byte(dot), 0o644)
	}
	svg, err := plan.RenderSVG(ctx, dot)
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	return os.WriteFile(path, svg, 0o644)
}

// printReport prints the run outcome.
func (c *CLI) printReport(r *placement.Report, locator string, opts tagOpts) {
	if r.DryRun {
		printInfo("Room tags to place (dry run): %s", StyleNumber.Render(strconv.Itoa(r.Placed)))
	} else {
		printSuccess("Room tags placed: %s", StyleNumber.Render(strconv.Itoa(r.Placed)))
	}

	stats := []string{
		fmt.Sprintf("%d primary rooms", r.Stats.PrimaryRooms),
		fmt.Sprintf("%d views", r.Stats.Views),
	}
	if r.IncludeLinked {
		stats = append(stats, fmt.Sprintf("%d links", r.Stats.Links), fmt.Sprintf("%d linked rooms", r.Stats.LinkedRooms))
	}
	printStats(stats...)
	if n := r.LinkedPlaced(); n > 0 {
		printDetail("%d from linked models", n)
	}

	if len(r.Skips) > 0 {
		if c.Logger.GetLevel() <= log.DebugLevel {
			for _, s := range r.Skips {
				printDetail("%s", describeSkip(s))
			}
		} else {
			printWarning("%d skipped (use --verbose to list them)", len(r.Skips))
		}
	}
	if opts.preview != "" {
		printFile(opts.preview)
	}
	if r.Remaining > 0 && !r.DryRun {
		printNewline()
		printNextStep(fmt.Sprintf("%d rooms still unlabeled", r.Remaining), "roomtag inspect "+locator)
	}
}

// describeSkip formats a skip as "reason: subject (detail)".
func describeSkip(s placement.Skip) string {
	var subject string
	switch {
	case s.Room != nil:
		subject = s.Room.String()
	case s.Link != "":
		subject = "link " + string(s.Link)
	}
	out := string(s.Reason)
	if subject != "" {
		out += ": " + subject
	}
	if s.Level != "" {
		out += " on level " + string(s.Level)
	}
	if s.Detail != "" {
		out += " (" + s.Detail + ")"
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
