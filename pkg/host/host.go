// Package host declares the services the placement engine needs from the
// application that owns the documents.
//
// The engine never touches a model store directly. It reads a snapshot
// through [Document], resolves links through [LinkResolver], and writes only
// through [TagCreator] inside a transaction opened with [Transactor].
// Implementations live in host/memory, store/sqlite and store/mongo.
package host

import (
	"context"

	"github.com/rajithraghunath/roomtag/pkg/model"
)

// Document is a read-only view of one document's entities.
type Document interface {
	ID() model.DocumentID

	// IsLinked reports whether the document is externally owned and
	// placed into another document through a link.
	IsLinked() bool

	Rooms(ctx context.Context) ([]model.Room, error)
	Tags(ctx context.Context) ([]model.RoomTag, error)
	Views(ctx context.Context) ([]model.View, error)
}

// Primary is the document labels are created in.
type Primary interface {
	Document
	Links(ctx context.Context) ([]model.LinkReference, error)
}

// LinkResolver resolves a link reference to its live document.
// ok is false when the target is missing or not loaded; that is not an error.
type LinkResolver interface {
	ResolveLink(ctx context.Context, link model.LinkReference) (doc Document, ok bool, err error)
}

// StyleProvider lists the label styles loaded in the primary document.
type StyleProvider interface {
	TagStyles(ctx context.Context) ([]model.TagStyle, error)
	ActivateStyle(ctx context.Context, id model.ElementID) error
}

// TagCreator persists one label and returns its id.
type TagCreator interface {
	CreateTag(ctx context.Context, req model.TagRequest) (model.ElementID, error)
}

// Tx is one all-or-nothing unit of work against the primary document.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Transactor opens transactions on the primary document.
type Transactor interface {
	Begin(ctx context.Context, name string) (Tx, error)
}

// Model bundles every collaborator a placement run needs.
type Model interface {
	Primary
	LinkResolver
	StyleProvider
	TagCreator
	Transactor
}
