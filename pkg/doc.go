// Package pkg provides the libraries behind roomtag, which places a label on
// every unlabeled room of a building model.
//
// # Overview
//
// A run labels the rooms of one primary document, and optionally the rooms of
// documents linked into it, in the plan view of each room's level:
//
//	host.Model (memory, sqlite, mongo)
//	         ↓
//	    [classify] which rooms already carry a label
//	         ↓
//	    [viewmap] which plan view hosts each level's labels
//	         ↓
//	    [linkxform] linked-room points mapped into the primary frame
//	         ↓
//	    [placement] one transaction creating every missing label
//	         ↓
//	    placement.Report (history, preview, HTTP/CLI output)
//
// # Quick Start
//
//	ws := memory.NewWorkspace(docs...)
//	m, _ := ws.Model("tower")
//	report, err := placement.NewRunner(logger).PlaceAll(ctx, m, placement.Options{
//	    IncludeLinked: true,
//	})
//	fmt.Println("Room tags placed:", report.Placed)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [model] - Rooms, labels, views, tag styles, link references and the affine
// [model.Transform] between document frames.
//
// [classify] - Partitions rooms into labeled and unlabeled by their
// document-qualified identity.
//
// [viewmap] - Maps each elevation level to the first eligible floor plan.
//
// [linkxform] - Resolves link references to live documents and maps their
// room points into the primary document.
//
// [placement] - The orchestrator: options, room filters, the [placement.Runner]
// and its report.
//
// ## Hosts and Stores
//
// [host] - Interfaces the orchestrator needs from the application owning the
// documents. [host/memory] implements them in memory.
//
// [store] - Opens a backend from a locator: snapshot files, SQLite
// ([store/sqlite]) or MongoDB ([store/mongo]).
//
// [snapshot] - JSON, YAML and TOML project files.
//
// ## Infrastructure
//
// [runlock] - Per-document run locks, in-process or in Redis.
//
// [history] - Last-run reports keyed by store and document.
//
// [render/plan] - Graphviz preview of label placements.
//
// [config], [errors], [observability], [buildinfo] - Configuration file, coded
// errors, hooks and version information.
//
// [model]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/model
// [classify]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/classify
// [viewmap]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/viewmap
// [linkxform]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/linkxform
// [placement]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/placement
// [host]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/host
// [host/memory]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/host/memory
// [store]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/store
// [store/sqlite]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/store/sqlite
// [store/mongo]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/store/mongo
// [snapshot]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/snapshot
// [runlock]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/runlock
// [history]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/history
// [render/plan]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/render/plan
// [config]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/config
// [errors]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/errors
// [observability]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/rajithraghunath/roomtag/pkg/buildinfo
package pkg
