package model

import (
	"fmt"

	"github.com/paulmach/orb"
)

// =============================================================================
// Identity
// =============================================================================

// ElementID identifies an element inside one document.
type ElementID string

// DocumentID identifies a host or linked document.
type DocumentID string

// RoomRef is a room identity qualified by the document that owns the room.
// Dedup and label creation always work on RoomRef, never on a bare ElementID.
type RoomRef struct {
	Document DocumentID `json:"document" yaml:"document" toml:"document" bson:"document"`
	Room     ElementID  `json:"room" yaml:"room" toml:"room" bson:"room"`
}

// String returns "document/room".
func (r RoomRef) String() string {
	return fmt.Sprintf("%s/%s", r.Document, r.Room)
}

// =============================================================================
// Room
// =============================================================================

// Room is a bounded spatial zone.
type Room struct {
	ID       ElementID  `json:"id" yaml:"id" toml:"id" bson:"id"`
	Document DocumentID `json:"document,omitempty" yaml:"document,omitempty" toml:"document,omitempty" bson:"document,omitempty"`
	Name     string     `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Number   string     `json:"number,omitempty" yaml:"number,omitempty" toml:"number,omitempty" bson:"number,omitempty"`
	Level    ElementID  `json:"level" yaml:"level" toml:"level" bson:"level"`
	Location *orb.Point `json:"location,omitempty" yaml:"location,omitempty" toml:"location,omitempty" bson:"location,omitempty"`
	Area     float64    `json:"area" yaml:"area" toml:"area" bson:"area"`
}

// Ref returns the qualified identity of the room.
func (r Room) Ref() RoomRef {
	return RoomRef{Document: r.Document, Room: r.ID}
}

// Taggable reports whether the room can carry a label at all: it must be
// placed (have a location and a level) and enclose a positive area.
func (r Room) Taggable() bool {
	return r.Location != nil && r.Area > 0 && r.Level != ""
}

// =============================================================================
// RoomTag
// =============================================================================

// RoomTag is a label annotating exactly one room in one view.
type RoomTag struct {
	ID    ElementID `json:"id" yaml:"id" toml:"id" bson:"id"`
	Room  RoomRef   `json:"room" yaml:"room" toml:"room" bson:"room"`
	Point orb.Point `json:"point" yaml:"point" toml:"point" bson:"point"`
	View  ElementID `json:"view,omitempty" yaml:"view,omitempty" toml:"view,omitempty" bson:"view,omitempty"`
	Style ElementID `json:"style,omitempty" yaml:"style,omitempty" toml:"style,omitempty" bson:"style,omitempty"`
}

// TagRequest asks the host to create one label.
type TagRequest struct {
	Room  RoomRef
	Point orb.Point
	View  ElementID
	Style ElementID
}

// =============================================================================
// View
// =============================================================================

// ViewKind is the kind of a host view.
type ViewKind string

// View kinds known to the host.
const (
	ViewFloorPlan   ViewKind = "floor_plan"
	ViewCeilingPlan ViewKind = "ceiling_plan"
	ViewAreaPlan    ViewKind = "area_plan"
	ViewSection     ViewKind = "section"
	ViewElevation   ViewKind = "elevation"
	View3D          ViewKind = "3d"
)

// View is a drawing view associated with an elevation level.
type View struct {
	ID       ElementID `json:"id" yaml:"id" toml:"id" bson:"id"`
	Name     string    `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Level    ElementID `json:"level,omitempty" yaml:"level,omitempty" toml:"level,omitempty" bson:"level,omitempty"`
	Kind     ViewKind  `json:"kind" yaml:"kind" toml:"kind" bson:"kind"`
	Template bool      `json:"template,omitempty" yaml:"template,omitempty" toml:"template,omitempty" bson:"template,omitempty"`
}

// IsPlan reports whether the view is a floor plan, the only kind that hosts room labels.
func (v View) IsPlan() bool { return v.Kind == ViewFloorPlan }

// Eligible reports whether labels may be placed in the view.
func (v View) Eligible() bool { return v.IsPlan() && !v.Template && v.Level != "" }

// =============================================================================
// TagStyle
// =============================================================================

// TagStyle is a label symbol loaded in the primary document.
type TagStyle struct {
	ID     ElementID `json:"id" yaml:"id" toml:"id" bson:"id"`
	Name   string    `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Family string    `json:"family,omitempty" yaml:"family,omitempty" toml:"family,omitempty" bson:"family,omitempty"`
	Active bool      `json:"active,omitempty" yaml:"active,omitempty" toml:"active,omitempty" bson:"active,omitempty"`
}

// =============================================================================
// LinkReference
// =============================================================================

// LinkReference places an externally owned document inside the primary one.
type LinkReference struct {
	ID        ElementID  `json:"id" yaml:"id" toml:"id" bson:"id"`
	Name      string     `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Target    DocumentID `json:"target" yaml:"target" toml:"target" bson:"target"`
	Transform Transform  `json:"transform" yaml:"transform" toml:"transform" bson:"transform"`
	Loaded    bool       `json:"loaded" yaml:"loaded" toml:"loaded" bson:"loaded"`
}
