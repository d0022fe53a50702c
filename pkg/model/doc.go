// Package model defines the entities the room tagger reads and writes.
//
// Rooms, labels (room tags), views, tag styles and link references are plain
// values: they are snapshotted from a host document at the start of a run and
// never mutated by the placement engine. The same types serialize to JSON,
// YAML, TOML and BSON so every store and transport shares one shape.
//
// # Identity
//
// Element ids are only unique within their owning document. Anything that
// must identify a room across documents uses [RoomRef], which qualifies the
// room id with its document id:
//
//	ref := model.RoomRef{Document: "arch-link", Room: "R-104"}
//
// # Coordinates
//
// Points are [orb.Point] values in the owning document's coordinate frame.
// [Transform] maps points from a linked document's frame into the primary
// document's frame.
package model
