package placement

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/rajithraghunath/roomtag/pkg/model"
)

// SkipReason classifies why a room or link received no label.
type SkipReason string

const (
	// SkipNoView: the room's level has no eligible plan view in the primary document.
	SkipNoView SkipReason = "no_view"
	// SkipUnresolvedLink: the link reference does not resolve to a live linked document.
	SkipUnresolvedLink SkipReason = "unresolved_link"
	// SkipCreateFailed: the host refused to create the label.
	SkipCreateFailed SkipReason = "create_failed"
	// SkipReadFailed: the linked document's rooms or labels could not be read.
	SkipReadFailed SkipReason = "read_failed"
)

// Skip records one room or link that could not be labeled.
type Skip struct {
	Reason SkipReason      `json:"reason" bson:"reason"`
	Room   *model.RoomRef  `json:"room,omitempty" bson:"room,omitempty"`
	Level  model.ElementID `json:"level,omitempty" bson:"level,omitempty"`
	Link   model.ElementID `json:"link,omitempty" bson:"link,omitempty"`
	Detail string          `json:"detail,omitempty" bson:"detail,omitempty"`
}

// Placement records one label created (or, in a dry run, planned).
type Placement struct {
	Room  model.RoomRef   `json:"room" bson:"room"`
	Tag   model.ElementID `json:"tag,omitempty" bson:"tag,omitempty"`
	View  model.ElementID `json:"view" bson:"view"`
	Level model.ElementID `json:"level" bson:"level"`
	Point orb.Point       `json:"point" bson:"point"`
	Link  model.ElementID `json:"link,omitempty" bson:"link,omitempty"`
}

// Linked reports whether the labeled room comes from a linked document.
func (p Placement) Linked() bool { return p.Link != "" }

// Stats contains run counters and timing.
type Stats struct {
	Views        int           `json:"views"`
	Levels       int           `json:"levels"`
	PrimaryRooms int           `json:"primary_rooms"`
	Links        int           `json:"links"`
	LinkedRooms  int           `json:"linked_rooms"`
	Duration     time.Duration `json:"duration"`
}

// Report is the result of a completed run.
type Report struct {
	Document      model.DocumentID `json:"document"`
	Style         model.ElementID  `json:"style"`
	IncludeLinked bool             `json:"include_linked"`
	DryRun        bool             `json:"dry_run,omitempty"`

	// Placed counts labels created; in a dry run, labels that would be created.
	Placed     int         `json:"placed_count"`
	Placements []Placement `json:"placements"`
	Skips      []Skip      `json:"skips"`

	// Remaining counts taggable primary rooms still unlabeled after the run.
	Remaining int `json:"remaining"`

	Succeeded bool      `json:"succeeded"`
	StartedAt time.Time `json:"started_at"`
	Stats     Stats     `json:"stats"`
}

// SkipCounts returns the number of skips per reason.
func (r *Report) SkipCounts() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, s := range r.Skips {
		counts[s.Reason]++
	}
	return counts
}

// LinkedPlaced counts placements of rooms from linked documents.
func (r *Report) LinkedPlaced() int {
	n := 0
	for _, p := range r.Placements {
		if p.Linked() {
			n++
		}
	}
	return n
}
