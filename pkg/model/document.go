package model

// DocumentData is the complete stored content of one document. Snapshot
// files, the memory host and the database stores all exchange this shape.
type DocumentData struct {
	ID     DocumentID      `json:"id" yaml:"id" toml:"id" bson:"_id"`
	Title  string          `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty" bson:"title,omitempty"`
	Linked bool            `json:"linked,omitempty" yaml:"linked,omitempty" toml:"linked,omitempty" bson:"linked,omitempty"`
	Rooms  []Room          `json:"rooms,omitempty" yaml:"rooms,omitempty" toml:"rooms,omitempty" bson:"-"`
	Tags   []RoomTag       `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty" bson:"-"`
	Views  []View          `json:"views,omitempty" yaml:"views,omitempty" toml:"views,omitempty" bson:"-"`
	Links  []LinkReference `json:"links,omitempty" yaml:"links,omitempty" toml:"links,omitempty" bson:"-"`
	Styles []TagStyle      `json:"tag_styles,omitempty" yaml:"tag_styles,omitempty" toml:"tag_styles,omitempty" bson:"-"`
}

// Normalize fills the owning document into rooms and same-document tag
// references and replaces omitted link transforms with the identity.
func (d *DocumentData) Normalize() {
	for i := range d.Rooms {
		if d.Rooms[i].Document == "" {
			d.Rooms[i].Document = d.ID
		}
	}
	for i := range d.Tags {
		if d.Tags[i].Room.Document == "" {
			d.Tags[i].Room.Document = d.ID
		}
	}
	for i := range d.Links {
		d.Links[i].Transform = d.Links[i].Transform.Normalize()
	}
}

// Clone returns a copy that shares no slices with d.
func (d DocumentData) Clone() DocumentData {
	c := d
	c.Rooms = append([]Room(nil), d.Rooms...)
	c.Tags = append([]RoomTag(nil), d.Tags...)
	c.Views = append([]View(nil), d.Views...)
	c.Links = append([]LinkReference(nil), d.Links...)
	c.Styles = append([]TagStyle(nil), d.Styles...)
	return c
}
