package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rajithraghunath/roomtag/pkg/classify"
	"github.com/rajithraghunath/roomtag/pkg/host"
	"github.com/rajithraghunath/roomtag/pkg/viewmap"
)

// inspection is what inspect reports for one primary document.
type inspection struct {
	Document  string
	Result    classify.Result
	Taggable  int
	Levels    []levelRow
	Links     int
	Unloaded  int
	StyleName string
}

// inspectCommand creates the inspect command. It reads only.
func (c *CLI) inspectCommand() *cobra.Command {
	var document string

	cmd := &cobra.Command{
		Use:   "inspect [store]",
		Short: "Show labeled and unlabeled rooms per level",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var locator string
			if len(args) == 1 {
				locator = args[0]
			}
			ctx := cmd.Context()
			b, err := c.openStoreProgress(ctx, locator)
			if err != nil {
				return err
			}
			defer b.Close(context.WithoutCancel(ctx))

			doc, err := c.resolveDocument(ctx, b, document)
			if err != nil {
				return err
			}
			m, err := b.Model(ctx, doc)
			if err != nil {
				return err
			}
			in, err := inspect(ctx, m)
			if err != nil {
				return err
			}
			printInspection(in)
			return nil
		},
	}

	cmd.Flags().StringVarP(&document, "doc", "d", "", "primary document id (default: first non-linked document)")
	return cmd
}

// inspect classifies the primary document's rooms and resolves its views.
func inspect(ctx context.Context, m host.Model) (*inspection, error) {
	rooms, err := m.Rooms(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := m.Tags(ctx)
	if err != nil {
		return nil, err
	}
	views, err := m.Views(ctx)
	if err != nil {
		return nil, err
	}
	links, err := m.Links(ctx)
	if err != nil {
		return nil, err
	}
	styles, err := m.TagStyles(ctx)
	if err != nil {
		return nil, err
	}

	taggable := classify.Taggable(rooms)
	result := classify.Classify(taggable, tags)
	in := &inspection{
		Document: string(m.ID()),
		Result:   result,
		Taggable: len(taggable),
		Levels:   levelRows(taggable, result.Unlabeled, viewmap.Resolve(views)),
		Links:    len(links),
	}
	for _, l := range links {
		if _, ok, err := m.ResolveLink(ctx, l); err != nil || !ok {
			in.Unloaded++
		}
	}
	for _, s := range styles {
		if s.Active {
			in.StyleName = firstNonEmpty(s.Name, string(s.ID))
			break
		}
	}
	if in.StyleName == "" && len(styles) > 0 {
		in.StyleName = firstNonEmpty(styles[0].Name, string(styles[0].ID)) + " (inactive)"
	}
	return in, nil
}

func printInspection(in *inspection) {
	printKeyValue("Document", StyleHighlight.Render(in.Document))
	printKeyValue("Rooms", fmt.Sprintf("%d taggable, %d labeled, %d unlabeled",
		in.Taggable, len(in.Result.Labeled), len(in.Result.Unlabeled)))
	if in.StyleName != "" {
		printKeyValue("Tag style", in.StyleName)
	} else {
		printKeyValue("Tag style", StyleWarning.Render("none loaded"))
	}
	if in.Links > 0 {
		printKeyValue("Links", fmt.Sprintf("%d (%d unavailable)", in.Links, in.Unloaded))
	}
	printNewline()
	fmt.Println(renderLevelTable(in.Levels))
}
