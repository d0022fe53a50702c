package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/host"
	"github.com/rajithraghunath/roomtag/pkg/model"
	"github.com/rajithraghunath/roomtag/pkg/observability"
)

const backendName = "sqlite"

// Model opens a document as the primary document of a run.
func (s *Store) Model(ctx context.Context, id model.DocumentID) (*Model, error) {
	if _, err := readHeader(ctx, s.db, id); err != nil {
		return nil, err
	}
	m := &Model{}
	m.docView = docView{store: s, model: m, id: id}
	return m, nil
}

// Model is one stored document opened as a primary document.
type Model struct {
	docView

	mu sync.Mutex
	tx *tx
}

var _ host.Model = (*Model)(nil)

// q returns the open transaction, or the database when no run is open.
func (m *Model) q() querier {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tx != nil {
		return m.tx.sqlTx
	}
	return m.store.db
}

// docView reads one stored document through its model's connection.
type docView struct {
	store  *Store
	model  *Model
	id     model.DocumentID
	linked bool
}

func (d docView) ID() model.DocumentID { return d.id }

func (d docView) IsLinked() bool {
	if d.linked {
		return true
	}
	h, err := readHeader(context.Background(), d.model.q(), d.id)
	return err == nil && h.Linked
}

func (d docView) Rooms(ctx context.Context) ([]model.Room, error) {
	return readRooms(ctx, d.model.q(), d.id)
}

func (d docView) Tags(ctx context.Context) ([]model.RoomTag, error) {
	return readTags(ctx, d.model.q(), d.id)
}

func (d docView) Views(ctx context.Context) ([]model.View, error) {
	return readViews(ctx, d.model.q(), d.id)
}

// Links returns the primary document's link references.
func (m *Model) Links(ctx context.Context) ([]model.LinkReference, error) {
	return readLinks(ctx, m.q(), m.id)
}

// ResolveLink returns the linked document if it is stored and the reference
// is loaded.
func (m *Model) ResolveLink(ctx context.Context, link model.LinkReference) (host.Document, bool, error) {
	if !link.Loaded || link.Target == m.id {
		return nil, false, nil
	}
	if _, err := readHeader(ctx, m.q(), link.Target); err != nil {
		if rterrors.Is(err, rterrors.ErrCodeDocumentNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return docView{store: m.store, model: m, id: link.Target, linked: true}, true, nil
}

// TagStyles returns the primary document's label styles.
func (m *Model) TagStyles(ctx context.Context) ([]model.TagStyle, error) {
	return readStyles(ctx, m.q(), m.id)
}

// ActivateStyle marks a style active.
func (m *Model) ActivateStyle(ctx context.Context, id model.ElementID) error {
	res, err := m.q().ExecContext(ctx, `UPDATE tag_styles SET active = 1 WHERE document = ? AND id = ?`, m.id, id)
	if err != nil {
		return fmt.Errorf("activate tag style %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rterrors.New(rterrors.ErrCodeNotFound, "tag style %q not found", id)
	}
	return nil
}

// CreateTag inserts a label row in the open transaction.
func (m *Model) CreateTag(ctx context.Context, req model.TagRequest) (model.ElementID, error) {
	m.mu.Lock()
	t := m.tx
	m.mu.Unlock()
	if t == nil {
		return "", fmt.Errorf("create tag: no open transaction")
	}

	var one int
	err := t.sqlTx.QueryRowContext(ctx, `SELECT 1 FROM views WHERE document = ? AND id = ?`, m.id, req.View).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("create tag: view %q not in document %q", req.View, m.id)
	} else if err != nil {
		return "", fmt.Errorf("create tag: %w", err)
	}
	err = t.sqlTx.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE document = ? AND id = ?`, req.Room.Document, req.Room.Room).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("create tag: room %s not found", req.Room)
	} else if err != nil {
		return "", fmt.Errorf("create tag: %w", err)
	}

	tag := model.RoomTag{
		ID:    model.ElementID(uuid.NewString()),
		Room:  req.Room,
		Point: req.Point,
		View:  req.View,
		Style: req.Style,
	}
	if err := insertTag(ctx, t.sqlTx, m.id, tag); err != nil {
		return "", fmt.Errorf("create tag: %w", err)
	}
	t.created++
	return tag.ID, nil
}

// Begin opens a SQL transaction for the run.
func (m *Model) Begin(ctx context.Context, name string) (host.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tx != nil {
		return nil, fmt.Errorf("begin %q: transaction %q already open", name, m.tx.name)
	}
	sqlTx, err := m.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin %q: %w", name, err)
	}
	m.tx = &tx{model: m, name: name, sqlTx: sqlTx, started: time.Now()}
	return m.tx, nil
}

type tx struct {
	model   *Model
	name    string
	sqlTx   *sql.Tx
	created int
	started time.Time
}

func (t *tx) close() {
	t.model.mu.Lock()
	if t.model.tx == t {
		t.model.tx = nil
	}
	t.model.mu.Unlock()
}

func (t *tx) Commit(ctx context.Context) error {
	err := t.sqlTx.Commit()
	t.close()
	observability.Store().OnCommit(ctx, backendName, t.created, time.Since(t.started), err)
	if err != nil {
		return fmt.Errorf("commit %q: %w", t.name, err)
	}
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	err := t.sqlTx.Rollback()
	t.close()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	observability.Store().OnRollback(ctx, backendName)
	return err
}
