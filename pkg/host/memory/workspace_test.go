package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/model"
)

func testWorkspace() *Workspace {
	return NewWorkspace(
		model.DocumentData{
			ID:     "host",
			Rooms:  []model.Room{{ID: "r1", Level: "L1", Location: &orb.Point{1, 2}, Area: 9}},
			Views:  []model.View{{ID: "v1", Level: "L1", Kind: model.ViewFloorPlan}},
			Styles: []model.TagStyle{{ID: "s1", Name: "Room Tag"}},
			Links: []model.LinkReference{
				{ID: "k1", Target: "arch", Loaded: true},
				{ID: "k2", Target: "arch", Loaded: false},
				{ID: "k3", Target: "missing", Loaded: true},
			},
		},
		model.DocumentData{
			ID:    "arch",
			Rooms: []model.Room{{ID: "a1", Level: "L1", Location: &orb.Point{0, 0}, Area: 4}},
		},
	)
}

func TestWorkspaceNormalizes(t *testing.T) {
	w := testWorkspace()
	d, ok := w.Document("host")
	if !ok {
		t.Fatal("host document missing")
	}
	if d.Rooms[0].Document != "host" {
		t.Errorf("room document = %q, want host", d.Rooms[0].Document)
	}
	if d.Links[0].Transform != model.Identity() {
		t.Error("omitted link transform should normalize to identity")
	}
}

func TestModelUnknownDocument(t *testing.T) {
	_, err := testWorkspace().Model("nope")
	if !rterrors.Is(err, rterrors.ErrCodeDocumentNotFound) {
		t.Errorf("Model(nope) error = %v, want DOCUMENT_NOT_FOUND", err)
	}
}

func TestResolveLink(t *testing.T) {
	ctx := context.Background()
	m, err := testWorkspace().Model("host")
	if err != nil {
		t.Fatal(err)
	}
	links, _ := m.Links(ctx)

	tests := []struct {
		link   model.LinkReference
		wantOK bool
	}{
		{links[0], true},
		{links[1], false}, // unloaded
		{links[2], false}, // target missing
	}
	for _, tt := range tests {
		doc, ok, err := m.ResolveLink(ctx, tt.link)
		if err != nil {
			t.Fatalf("ResolveLink(%s) error: %v", tt.link.ID, err)
		}
		if ok != tt.wantOK {
			t.Errorf("ResolveLink(%s) ok = %v, want %v", tt.link.ID, ok, tt.wantOK)
		}
		if ok && !doc.IsLinked() {
			t.Errorf("ResolveLink(%s) document should report IsLinked", tt.link.ID)
		}
	}
}

func TestCreateTagCommit(t *testing.T) {
	ctx := context.Background()
	w := testWorkspace()
	committed := false
	w.OnCommit = func(context.Context) error {
		committed = true
		return nil
	}
	m, _ := w.Model("host")

	if _, err := m.CreateTag(ctx, model.TagRequest{}); err == nil {
		t.Error("CreateTag outside a transaction should fail")
	}

	tx, err := m.Begin(ctx, "tag")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Begin(ctx, "again"); err == nil {
		t.Error("second Begin should fail while a transaction is open")
	}

	id, err := m.CreateTag(ctx, model.TagRequest{
		Room:  model.RoomRef{Document: "host", Room: "r1"},
		Point: orb.Point{1, 2},
		View:  "v1",
	})
	if err != nil || id == "" {
		t.Fatalf("CreateTag = (%q, %v)", id, err)
	}
	if _, err := m.CreateTag(ctx, model.TagRequest{Room: model.RoomRef{Document: "host", Room: "r1"}, View: "nope"}); err == nil {
		t.Error("CreateTag with unknown view should fail")
	}
	if _, err := m.CreateTag(ctx, model.TagRequest{Room: model.RoomRef{Document: "host", Room: "zz"}, View: "v1"}); err == nil {
		t.Error("CreateTag with unknown room should fail")
	}

	tags, _ := m.Tags(ctx)
	if len(tags) != 1 {
		t.Errorf("tags visible inside transaction = %d, want 1", len(tags))
	}
	if d, _ := w.Document("host"); len(d.Tags) != 0 {
		t.Error("workspace should not see tags before commit")
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	if !committed {
		t.Error("OnCommit should run")
	}
	if d, _ := w.Document("host"); len(d.Tags) != 1 || d.Tags[0].ID != id {
		t.Errorf("committed tags = %+v", d.Tags)
	}
}

func TestRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	w := testWorkspace()
	m, _ := w.Model("host")

	tx, _ := m.Begin(ctx, "tag")
	if err := m.ActivateStyle(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	styles, _ := m.TagStyles(ctx)
	if !styles[0].Active {
		t.Error("activation should be visible inside the transaction")
	}
	_, _ = m.CreateTag(ctx, model.TagRequest{Room: model.RoomRef{Document: "host", Room: "r1"}, View: "v1"})
	if err := tx.Rollback(ctx); err != nil {
		t.Fatal(err)
	}

	d, _ := w.Document("host")
	if len(d.Tags) != 0 {
		t.Error("rollback should discard tags")
	}
	if d.Styles[0].Active {
		t.Error("rollback should discard style activation")
	}
}

func TestCommitFailureRestores(t *testing.T) {
	ctx := context.Background()
	w := testWorkspace()
	w.OnCommit = func(context.Context) error { return errors.New("disk full") }
	m, _ := w.Model("host")

	tx, _ := m.Begin(ctx, "tag")
	if err := m.ActivateStyle(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CreateTag(ctx, model.TagRequest{Room: model.RoomRef{Document: "host", Room: "r1"}, View: "v1"}); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(ctx); err == nil {
		t.Fatal("Commit should report the write-back failure")
	}

	d, _ := w.Document("host")
	if len(d.Tags) != 0 {
		t.Errorf("tags after failed commit = %d, want 0", len(d.Tags))
	}
	if d.Styles[0].Active {
		t.Error("style activation should be undone after failed commit")
	}
	if tags, _ := m.Tags(ctx); len(tags) != 0 {
		t.Errorf("model tags after failed commit = %d, want 0", len(tags))
	}
}
