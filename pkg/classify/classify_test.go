package classify

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/rajithraghunath/roomtag/pkg/model"
)

func room(doc model.DocumentID, id model.ElementID) model.Room {
	return model.Room{ID: id, Document: doc, Level: "L1", Location: &orb.Point{0, 0}, Area: 10}
}

func tag(doc model.DocumentID, id model.ElementID) model.RoomTag {
	return model.RoomTag{ID: "t-" + id, Room: model.RoomRef{Document: doc, Room: id}}
}

func ids(rooms []model.Room) []model.ElementID {
	out := make([]model.ElementID, len(rooms))
	for i, r := range rooms {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []model.ElementID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestClassify(t *testing.T) {
	rooms := []model.Room{room("host", "a"), room("host", "b"), room("host", "c")}

	tests := []struct {
		name          string
		tags          []model.RoomTag
		wantLabeled   []model.ElementID
		wantUnlabeled []model.ElementID
	}{
		{"no tags", nil, []model.ElementID{}, []model.ElementID{"a", "b", "c"}},
		{"one tagged", []model.RoomTag{tag("host", "b")}, []model.ElementID{"b"}, []model.ElementID{"a", "c"}},
		{"double tagged", []model.RoomTag{tag("host", "a"), tag("host", "a")}, []model.ElementID{"a"}, []model.ElementID{"b", "c"}},
		{"dangling tag ignored", []model.RoomTag{tag("host", "zz")}, []model.ElementID{}, []model.ElementID{"a", "b", "c"}},
		{"other document does not match", []model.RoomTag{tag("link", "a")}, []model.ElementID{}, []model.ElementID{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(rooms, tt.tags)
			if got := ids(res.Labeled); !equalIDs(got, tt.wantLabeled) {
				t.Errorf("Labeled = %v, want %v", got, tt.wantLabeled)
			}
			if got := ids(res.Unlabeled); !equalIDs(got, tt.wantUnlabeled) {
				t.Errorf("Unlabeled = %v, want %v", got, tt.wantUnlabeled)
			}
			if len(res.Rooms) != len(rooms) {
				t.Errorf("Rooms = %d, want %d", len(res.Rooms), len(rooms))
			}
		})
	}
}

func TestClassifyEmpty(t *testing.T) {
	res := Classify(nil, nil)
	if len(res.Rooms) != 0 || len(res.Labeled) != 0 || len(res.Unlabeled) != 0 {
		t.Errorf("Classify(nil, nil) = %+v, want empty", res)
	}
}

func TestCandidates(t *testing.T) {
	unplaced := room("host", "unplaced")
	unplaced.Location = nil
	flat := room("host", "flat")
	flat.Area = 0
	rooms := []model.Room{room("host", "a"), unplaced, flat, room("host", "b")}

	got := ids(Candidates(rooms, []model.RoomTag{tag("host", "b")}))
	if want := []model.ElementID{"a"}; !equalIDs(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}
