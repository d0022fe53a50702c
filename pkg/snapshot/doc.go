// Package snapshot reads and writes project snapshots: a set of documents
// with their rooms, labels, views, styles and link references.
//
// # Formats
//
// Snapshots are stored as JSON, YAML or TOML; the format follows the file
// extension (see [DetectFormat]). All three share one shape:
//
//	{
//	  "documents": [
//	    {
//	      "id": "tower",
//	      "rooms": [{"id": "r1", "level": "L1", "location": [3, 4], "area": 12.5}],
//	      "views": [{"id": "v1", "level": "L1", "kind": "floor_plan"}],
//	      "tag_styles": [{"id": "s1", "name": "Room Tag", "active": true}],
//	      "links": [{"id": "k1", "target": "core", "loaded": true,
//	                 "transform": [[1,0,0,10],[0,1,0,5],[0,0,1,0],[0,0,0,1]]}]
//	    },
//	    {"id": "core", "linked": true, "rooms": [...]}
//	  ]
//	}
//
// A room without "location" is unplaced. A link without "transform" uses the
// identity. Room and label document references default to the enclosing
// document.
//
// # Import and export
//
// [Read] and [Write] work on any reader or writer; [Load] and [Save] on file
// paths. Save writes to a temporary file in the same directory and renames it
// into place.
package snapshot
