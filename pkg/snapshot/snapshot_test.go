package snapshot

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/model"
)

func testSnapshot() *Snapshot {
	return &Snapshot{Documents: []model.DocumentData{
		{
			ID:    "tower",
			Title: "Tower A",
			Rooms: []model.Room{
				{ID: "r1", Name: "Office", Number: "101", Level: "L1", Location: &orb.Point{3, 4}, Area: 12.5},
				{ID: "r2", Level: "L1", Area: 3},
			},
			Tags:   []model.RoomTag{{ID: "t1", Room: model.RoomRef{Room: "r1"}, Point: orb.Point{3, 4}, View: "v1"}},
			Views:  []model.View{{ID: "v1", Name: "Level 1", Level: "L1", Kind: model.ViewFloorPlan}},
			Styles: []model.TagStyle{{ID: "s1", Name: "Room Tag", Active: true}},
			Links:  []model.LinkReference{{ID: "k1", Target: "core", Transform: model.Translation(10, 5, 0), Loaded: true}},
		},
		{ID: "core", Linked: true, Rooms: []model.Room{{ID: "c1", Level: "L1", Location: &orb.Point{0, 0}, Area: 8}}},
	}}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.json", FormatJSON},
		{"dir/b.YAML", FormatYAML},
		{"c.yml", FormatYAML},
		{"d.toml", FormatTOML},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, %v, want %q", tt.path, got, err, tt.want)
		}
	}
	if _, err := DetectFormat("model.rvt"); !rterrors.Is(err, rterrors.ErrCodeInvalidFormat) {
		t.Errorf("DetectFormat(model.rvt) error = %v, want INVALID_FORMAT", err)
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range []string{".json", ".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "project"+ext)
			if err := Save(path, testSnapshot()); err != nil {
				t.Fatalf("Save: %v", err)
			}
			s, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(s.Documents) != 2 {
				t.Fatalf("documents = %d, want 2", len(s.Documents))
			}
			tower := s.Documents[0]
			if tower.Rooms[0].Location == nil || *tower.Rooms[0].Location != (orb.Point{3, 4}) {
				t.Errorf("r1 location = %v, want [3 4]", tower.Rooms[0].Location)
			}
			if tower.Rooms[1].Location != nil {
				t.Errorf("r2 location = %v, want nil", tower.Rooms[1].Location)
			}
			if tower.Tags[0].Room.Document != "tower" {
				t.Errorf("tag document = %q, want tower", tower.Tags[0].Room.Document)
			}
			if tower.Links[0].Transform != model.Translation(10, 5, 0) {
				t.Errorf("link transform = %v", tower.Links[0].Transform)
			}
			if !s.Documents[1].Linked {
				t.Error("core.Linked = false, want true")
			}
		})
	}
}

func TestReadDefaults(t *testing.T) {
	in := `{"documents":[{"id":"a","rooms":[{"id":"r","level":"L1","area":1}],"links":[{"id":"k","target":"b"}]}]}`
	s, err := Read(strings.NewReader(in), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	d := s.Documents[0]
	if d.Rooms[0].Document != "a" {
		t.Errorf("room document = %q, want a", d.Rooms[0].Document)
	}
	if d.Links[0].Transform != model.Identity() {
		t.Errorf("omitted transform = %v, want identity", d.Links[0].Transform)
	}
}

func TestReadYAML(t *testing.T) {
	in := `
documents:
  - id: a
    rooms:
      - {id: r1, level: L1, location: [1.5, 2], area: 4}
    views:
      - {id: v1, level: L1, kind: floor_plan}
`
	s, err := Read(strings.NewReader(in), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	r := s.Documents[0].Rooms[0]
	if r.Location == nil || *r.Location != (orb.Point{1.5, 2}) {
		t.Errorf("location = %v, want [1.5 2]", r.Location)
	}
	if s.Documents[0].Views[0].Kind != model.ViewFloorPlan {
		t.Errorf("kind = %q, want floor_plan", s.Documents[0].Views[0].Kind)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing document id", `{"documents":[{"title":"x"}]}`},
		{"duplicate document", `{"documents":[{"id":"a"},{"id":"a"}]}`},
		{"missing room id", `{"documents":[{"id":"a","rooms":[{"level":"L1"}]}]}`},
		{"duplicate room", `{"documents":[{"id":"a","rooms":[{"id":"r"},{"id":"r"}]}]}`},
		{"missing view id", `{"documents":[{"id":"a","views":[{"kind":"floor_plan"}]}]}`},
		{"missing link id", `{"documents":[{"id":"a","links":[{"target":"b"}]}]}`},
		{"malformed", `{"documents":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in), FormatJSON)
			if !rterrors.Is(err, rterrors.ErrCodeInvalidInput) {
				t.Errorf("Read error = %v, want INVALID_INPUT", err)
			}
		})
	}
}
