package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/rajithraghunath/roomtag/pkg/config"
	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/history"
	"github.com/rajithraghunath/roomtag/pkg/model"
	"github.com/rajithraghunath/roomtag/pkg/observability"
	"github.com/rajithraghunath/roomtag/pkg/placement"
	"github.com/rajithraghunath/roomtag/pkg/snapshot"
	"github.com/rajithraghunath/roomtag/pkg/store"
)

// writeProject writes a snapshot with a primary document "tower" (two
// unlabeled rooms on L1) and a linked document "core" (one room).
func writeProject(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.yaml")
	s := &snapshot.Snapshot{Documents: []model.DocumentData{
		{
			ID: "tower",
			Rooms: []model.Room{
				{ID: "r1", Level: "L1", Location: &orb.Point{1, 1}, Area: 4},
				{ID: "r2", Level: "L1", Location: &orb.Point{3, 1}, Area: 12},
			},
			Views:  []model.View{{ID: "v1", Name: "Level 1", Level: "L1", Kind: model.ViewFloorPlan}},
			Styles: []model.TagStyle{{ID: "s1", Name: "Room Tag"}},
			Links:  []model.LinkReference{{ID: "k1", Target: "core", Loaded: true, Transform: model.Translation(10, 5, 0)}},
		},
		{
			ID:     "core",
			Linked: true,
			Rooms:  []model.Room{{ID: "c1", Level: "L1", Location: &orb.Point{0, 0}, Area: 4}},
		},
	}}
	if err := snapshot.Save(path, s); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestCLI(t *testing.T) (*CLI, context.Context) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	c.Config.HistoryDir = t.TempDir()
	return c, withLogger(context.Background(), c.Logger)
}

func TestRunTag(t *testing.T) {
	tests := []struct {
		name       string
		linked     string
		configMode config.LinkedMode
		want       int
	}{
		{"linked yes", "yes", config.LinkedAsk, 3},
		{"linked no", "no", config.LinkedAsk, 2},
		{"config no", "", config.LinkedNo, 2},
		{"ask without terminal", "", config.LinkedAsk, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProject(t)
			c, ctx := newTestCLI(t)
			c.Config.IncludeLinked = tt.configMode

			report, locator, err := c.runTag(ctx, tagOpts{store: path, linked: tt.linked})
			if err != nil {
				t.Fatalf("runTag: %v", err)
			}
			if locator != path {
				t.Errorf("locator = %q, want %q", locator, path)
			}
			if report.Placed != tt.want {
				t.Errorf("Placed = %d, want %d", report.Placed, tt.want)
			}

			s, err := snapshot.Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if n := len(s.Documents[0].Tags); n != tt.want {
				t.Errorf("tags written back = %d, want %d", n, tt.want)
			}
			if !s.Documents[0].Styles[0].Active {
				t.Error("tag style should have been activated")
			}

			hist, err := history.NewFileStore(c.Config.HistoryDir)
			if err != nil {
				t.Fatal(err)
			}
			e, ok, err := hist.Latest(ctx, path, "tower")
			if err != nil || !ok {
				t.Fatalf("Latest = %v, %v, want a recorded run", ok, err)
			}
			if e.Report.Placed != tt.want {
				t.Errorf("recorded Placed = %d, want %d", e.Report.Placed, tt.want)
			}
		})
	}
}

func TestRunTagDryRun(t *testing.T) {
	path := writeProject(t)
	c, ctx := newTestCLI(t)

	report, _, err := c.runTag(ctx, tagOpts{store: path, linked: "yes", dryRun: true})
	if err != nil {
		t.Fatalf("runTag: %v", err)
	}
	if report.Placed != 3 || !report.DryRun {
		t.Errorf("report = placed %d, dry run %v, want 3, true", report.Placed, report.DryRun)
	}

	s, err := snapshot.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(s.Documents[0].Tags); n != 0 {
		t.Errorf("dry run wrote %d tags", n)
	}
	hist, _ := history.NewFileStore(c.Config.HistoryDir)
	if _, ok, _ := hist.Latest(ctx, path, "tower"); ok {
		t.Error("dry run should not be recorded")
	}
}

func TestRunTagFilterAndPreview(t *testing.T) {
	path := writeProject(t)
	c, ctx := newTestCLI(t)
	preview := filepath.Join(t.TempDir(), "plan.dot")

	report, _, err := c.runTag(ctx, tagOpts{store: path, linked: "yes", where: "area >= 10", preview: preview, noHistory: true})
	if err != nil {
		t.Fatalf("runTag: %v", err)
	}
	if report.Placed != 1 || report.Placements[0].Room.Room != "r2" {
		t.Errorf("placements = %+v, want only r2", report.Placements)
	}

	dot, err := os.ReadFile(preview)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(dot), "graph") {
		t.Errorf("preview = %q, want DOT source", dot)
	}
}

func TestRunTagErrors(t *testing.T) {
	path := writeProject(t)
	tests := []struct {
		name string
		opts tagOpts
		want rterrors.Code
	}{
		{"bad linked mode", tagOpts{store: path, linked: "maybe"}, rterrors.ErrCodeInvalidInput},
		{"bad filter", tagOpts{store: path, linked: "yes", where: "area >"}, rterrors.ErrCodeInvalidFilter},
		{"no store", tagOpts{linked: "yes"}, rterrors.ErrCodeInvalidInput},
		{"unknown document", tagOpts{store: path, linked: "yes", document: "nope"}, rterrors.ErrCodeDocumentNotFound},
		{"unknown style", tagOpts{store: path, linked: "yes", style: "Door Tag"}, rterrors.ErrCodeNoTagStyle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ctx := newTestCLI(t)
			_, _, err := c.runTag(ctx, tt.opts)
			if got := rterrors.GetCode(err); got != tt.want {
				t.Errorf("code = %q (%v), want %q", got, err, tt.want)
			}
		})
	}
}

func TestResolveDocument(t *testing.T) {
	path := writeProject(t)
	c, ctx := newTestCLI(t)
	b, err := store.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close(ctx)

	if doc, _ := c.resolveDocument(ctx, b, ""); doc != "tower" {
		t.Errorf("default document = %q, want tower", doc)
	}
	c.Config.Document = "core"
	if doc, _ := c.resolveDocument(ctx, b, ""); doc != "core" {
		t.Errorf("configured document = %q, want core", doc)
	}
	if doc, _ := c.resolveDocument(ctx, b, "other"); doc != "other" {
		t.Errorf("flag document = %q, want other", doc)
	}
}

func TestConfigure(t *testing.T) {
	t.Cleanup(observability.Reset)

	path := filepath.Join(t.TempDir(), "config.toml")
	data := "store = \"project.yaml\"\ninclude_linked = \"no\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogDebug)
	c.configPath = path
	cmd := &cobra.Command{}
	if err := c.configure(cmd, nil); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if c.Config.Store != "project.yaml" || c.Config.IncludeLinked != config.LinkedNo {
		t.Errorf("config = %+v", c.Config)
	}
	if loggerFromContext(cmd.Context()) != c.Logger {
		t.Error("command context should carry the CLI logger")
	}
	if _, ok := observability.Placement().(*logHooks); !ok {
		t.Error("debug level should register logging hooks")
	}

	c.configPath = filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(c.configPath, []byte("include_linked = \"sometimes\"\n"), 0o644)
	if err := c.configure(&cobra.Command{}, nil); rterrors.GetCode(err) != rterrors.ErrCodeInvalidInput {
		t.Errorf("bad config error = %v, want INVALID_INPUT", err)
	}
}

func TestDescribeSkip(t *testing.T) {
	ref := model.RoomRef{Document: "tower", Room: "r9"}
	tests := []struct {
		skip placement.Skip
		want string
	}{
		{placement.Skip{Reason: placement.SkipNoView, Room: &ref, Level: "L9"}, "no_view: tower/r9 on level L9"},
		{placement.Skip{Reason: placement.SkipUnresolvedLink, Link: "k2", Detail: "not loaded"}, "unresolved_link: link k2 (not loaded)"},
		{placement.Skip{Reason: placement.SkipReadFailed}, "read_failed"},
	}
	for _, tt := range tests {
		if got := describeSkip(tt.skip); got != tt.want {
			t.Errorf("describeSkip() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseSnapshotFormat(t *testing.T) {
	for _, s := range []string{"json", "yaml", "toml"} {
		if f, err := parseSnapshotFormat(s); err != nil || string(f) != s {
			t.Errorf("parseSnapshotFormat(%q) = %q, %v", s, f, err)
		}
	}
	if _, err := parseSnapshotFormat("xml"); rterrors.GetCode(err) != rterrors.ErrCodeInvalidFormat {
		t.Errorf("parseSnapshotFormat(xml) error = %v, want INVALID_FORMAT", err)
	}
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"tag", "inspect", "import", "export", "history", "serve", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestPrintError(t *testing.T) {
	var b strings.Builder
	PrintError(&b, rterrors.Wrap(rterrors.ErrCodeStore, io.ErrUnexpectedEOF, "read tags"))

	out := b.String()
	if !strings.Contains(out, "read tags") {
		t.Errorf("output = %q, want the user message", out)
	}
	if strings.Contains(out, io.ErrUnexpectedEOF.Error()) {
		t.Errorf("output = %q, should not include the wrapped cause", out)
	}
	if !strings.Contains(out, iconError) {
		t.Errorf("output = %q, want the error icon", out)
	}
}
