package store

import (
	"context"
	"errors"
	"io/fs"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/host"
	"github.com/rajithraghunath/roomtag/pkg/host/memory"
	"github.com/rajithraghunath/roomtag/pkg/model"
	"github.com/rajithraghunath/roomtag/pkg/snapshot"
)

// FileBackend serves a snapshot file through an in-memory workspace.
type FileBackend struct {
	path string
	ws   *memory.Workspace
}

// OpenFile loads the snapshot at path. A missing file opens an empty
// workspace that is created on the first import or commit.
func OpenFile(path string) (*FileBackend, error) {
	if _, err := snapshot.DetectFormat(path); err != nil {
		return nil, err
	}
	var docs []model.DocumentData
	s, err := snapshot.Load(path)
	switch {
	case err == nil:
		docs = s.Documents
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	b := &FileBackend{path: path, ws: memory.NewWorkspace(docs...)}
	b.ws.OnCommit = b.save
	return b, nil
}

func (b *FileBackend) save(ctx context.Context) error {
	return snapshot.Save(b.path, &snapshot.Snapshot{Documents: b.ws.Documents()})
}

func (b *FileBackend) Name() string    { return "file" }
func (b *FileBackend) Locator() string { return b.path }

// Workspace returns the in-memory documents.
func (b *FileBackend) Workspace() *memory.Workspace { return b.ws }

func (b *FileBackend) Documents(ctx context.Context) ([]model.DocumentID, error) {
	docs := b.ws.Documents()
	ids := make([]model.DocumentID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func (b *FileBackend) Model(ctx context.Context, id model.DocumentID) (host.Model, error) {
	m, err := b.ws.Model(id)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (b *FileBackend) Import(ctx context.Context, docs ...model.DocumentData) error {
	for _, d := range docs {
		b.ws.Put(d)
	}
	if err := b.save(ctx); err != nil {
		return rterrors.Wrap(rterrors.ErrCodeStore, err, "write %s", b.path)
	}
	return nil
}

func (b *FileBackend) Export(ctx context.Context) ([]model.DocumentData, error) {
	return b.ws.Documents(), nil
}

func (b *FileBackend) Close(ctx context.Context) error { return nil }

func errNoDocuments(locator string) error {
	return rterrors.New(rterrors.ErrCodeDocumentNotFound, "store %s holds no documents", locator)
}
