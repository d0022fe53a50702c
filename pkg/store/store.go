// Package store opens a document store from a locator string.
//
// Locators:
//   - sqlite://path/to/project.db: a SQLite database ([sqlite.Store])
//   - mongodb://host/db or mongodb+srv://...: a MongoDB database ([mongo.Store])
//   - anything else: a snapshot file (.json, .yaml, .yml, .toml) loaded into
//     memory and written back after every committed run
//
// Every backend serves documents as [host.Model] values for the placement
// runner and can import and export whole documents.
package store

import (
	"context"
	"strings"

	"github.com/rajithraghunath/roomtag/pkg/host"
	"github.com/rajithraghunath/roomtag/pkg/model"
	"github.com/rajithraghunath/roomtag/pkg/store/mongo"
	"github.com/rajithraghunath/roomtag/pkg/store/sqlite"
)

// Backend is an open document store.
type Backend interface {
	// Name identifies the backend kind ("file", "sqlite", "mongodb").
	Name() string

	// Locator returns the string the backend was opened from.
	Locator() string

	// Documents lists the stored document ids.
	Documents(ctx context.Context) ([]model.DocumentID, error)

	// Model opens one document as the primary document of a run.
	Model(ctx context.Context, id model.DocumentID) (host.Model, error)

	// Import replaces the stored content of each document.
	Import(ctx context.Context, docs ...model.DocumentData) error

	// Export reads every document.
	Export(ctx context.Context) ([]model.DocumentData, error)

	Close(ctx context.Context) error
}

const sqlitePrefix = "sqlite://"

// Kind returns the backend kind a locator selects without opening it.
func Kind(locator string) string {
	switch {
	case strings.HasPrefix(locator, sqlitePrefix):
		return "sqlite"
	case strings.HasPrefix(locator, "mongodb://"), strings.HasPrefix(locator, "mongodb+srv://"):
		return "mongodb"
	}
	return "file"
}

// Open opens the store a locator names.
func Open(ctx context.Context, locator string) (Backend, error) {
	switch Kind(locator) {
	case "sqlite":
		s, err := sqlite.Open(ctx, strings.TrimPrefix(locator, sqlitePrefix))
		if err != nil {
			return nil, err
		}
		return &sqliteBackend{Store: s, locator: locator}, nil
	case "mongodb":
		s, err := mongo.Open(ctx, locator)
		if err != nil {
			return nil, err
		}
		return &mongoBackend{Store: s, locator: locator}, nil
	}
	return OpenFile(locator)
}

// DefaultDocument returns the only document of a backend, or the first one
// that is not itself linked into others.
func DefaultDocument(ctx context.Context, b Backend) (model.DocumentID, error) {
	docs, err := b.Export(ctx)
	if err != nil {
		return "", err
	}
	for _, d := range docs {
		if !d.Linked {
			return d.ID, nil
		}
	}
	if len(docs) > 0 {
		return docs[0].ID, nil
	}
	return "", errNoDocuments(b.Locator())
}

type sqliteBackend struct {
	*sqlite.Store
	locator string
}

func (b *sqliteBackend) Name() string    { return "sqlite" }
func (b *sqliteBackend) Locator() string { return b.locator }

func (b *sqliteBackend) Model(ctx context.Context, id model.DocumentID) (host.Model, error) {
	m, err := b.Store.Model(ctx, id)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (b *sqliteBackend) Close(ctx context.Context) error { return b.Store.Close() }

type mongoBackend struct {
	*mongo.Store
	locator string
}

func (b *mongoBackend) Name() string    { return "mongodb" }
func (b *mongoBackend) Locator() string { return b.locator }

func (b *mongoBackend) Model(ctx context.Context, id model.DocumentID) (host.Model, error) {
	m, err := b.Store.Model(ctx, id)
	if err != nil {
		return nil, err
	}
	return m, nil
}
