package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rajithraghunath/roomtag/pkg/model"
	"github.com/rajithraghunath/roomtag/pkg/placement"
)

// openTestStore connects to ROOMTAG_TEST_MONGO_URI using a throwaway database.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("ROOMTAG_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ROOMTAG_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := Open(ctx, uri)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.db = s.client.Database(fmt.Sprintf("roomtag_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx := context.Background()
		_ = s.db.Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestPlaceAllMongo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Import(ctx,
		model.DocumentData{
			ID:     "host",
			Rooms:  []model.Room{{ID: "r1", Level: "L1", Location: &orb.Point{1, 1}, Area: 4}},
			Views:  []model.View{{ID: "v1", Level: "L1", Kind: model.ViewFloorPlan}},
			Styles: []model.TagStyle{{ID: "s1"}},
			Links:  []model.LinkReference{{ID: "k1", Target: "arch", Transform: model.Translation(10, 5, 0), Loaded: true}},
		},
		model.DocumentData{
			ID:     "arch",
			Linked: true,
			Rooms:  []model.Room{{ID: "a1", Level: "L1", Location: &orb.Point{0, 0}, Area: 4}},
		},
	)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	m, err := s.Model(ctx, "host")
	if err != nil {
		t.Fatal(err)
	}
	report, err := placement.NewRunner(nil).PlaceAll(ctx, m, placement.Options{IncludeLinked: true})
	if err != nil {
		t.Fatalf("PlaceAll: %v", err)
	}
	if report.Placed != 2 {
		t.Errorf("Placed = %d, want 2", report.Placed)
	}

	tags, err := s.tags(ctx, "host")
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 || tags[1].Point != (orb.Point{10, 5}) {
		t.Errorf("tags = %+v, want linked tag at [10 5]", tags)
	}

	m, _ = s.Model(ctx, "host")
	report, err = placement.NewRunner(nil).PlaceAll(ctx, m, placement.Options{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if report.Placed != 0 {
		t.Errorf("second run Placed = %d, want 0", report.Placed)
	}
}

func TestWriteFailureLeavesNoTags(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Import(ctx, model.DocumentData{
		ID:     "host",
		Rooms:  []model.Room{{ID: "r1", Level: "L1", Location: &orb.Point{1, 1}, Area: 4}},
		Views:  []model.View{{ID: "v1", Level: "L1", Kind: model.ViewFloorPlan}},
		Styles: []model.TagStyle{{ID: "s1"}},
		Tags:   []model.RoomTag{{ID: "dup", Room: model.RoomRef{Document: "host", Room: "r1"}}},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	_, err = s.db.Collection(collTags).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatal(err)
	}

	batch := []model.RoomTag{
		{ID: "fresh", Room: model.RoomRef{Document: "host", Room: "r1"}},
		{ID: "dup", Room: model.RoomRef{Document: "host", Room: "r1"}},
	}
	if err := s.write(ctx, "host", batch, []model.ElementID{"s1"}); err == nil {
		t.Fatal("write with a duplicate tag id should fail")
	}

	n, err := s.db.Collection(collTags).CountDocuments(ctx, bson.D{{Key: "id", Value: "fresh"}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("partially inserted tag left behind: %d records", n)
	}
	tags, err := s.tags(ctx, "host")
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0].ID != "dup" {
		t.Errorf("tags = %+v, want only the original label", tags)
	}
}
