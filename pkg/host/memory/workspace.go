// Package memory implements every host collaborator over an in-memory set
// of documents.
//
// A [Workspace] owns the documents; [Workspace.Model] opens one of them as the
// primary document of a placement run. Tags created inside a transaction are
// visible to reads through the same model and are applied to the workspace
// only on commit.
//
// Snapshot files are loaded into a Workspace, and tests use it as the host.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/host"
	"github.com/rajithraghunath/roomtag/pkg/model"
	"github.com/rajithraghunath/roomtag/pkg/observability"
)

const backendName = "memory"

// Workspace is a set of documents that can reference each other through links.
// It is safe for concurrent use.
type Workspace struct {
	mu    sync.Mutex
	docs  map[model.DocumentID]*model.DocumentData
	order []model.DocumentID

	// OnCommit, when set, runs after a transaction has been applied.
	// Snapshot stores use it to write the file back. When it fails the
	// transaction's changes are removed again.
	OnCommit func(ctx context.Context) error
}

// NewWorkspace creates a workspace holding copies of docs.
// Later documents replace earlier ones with the same id.
func NewWorkspace(docs ...model.DocumentData) *Workspace {
	w := &Workspace{docs: make(map[model.DocumentID]*model.DocumentData, len(docs))}
	for _, d := range docs {
		w.put(d)
	}
	return w
}

func (w *Workspace) put(d model.DocumentData) {
	c := d.Clone()
	c.Normalize()
	if _, ok := w.docs[c.ID]; !ok {
		w.order = append(w.order, c.ID)
	}
	w.docs[c.ID] = &c
}

// Put adds or replaces a document.
func (w *Workspace) Put(d model.DocumentData) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.put(d)
}

// Documents returns copies of every document in insertion order.
func (w *Workspace) Documents() []model.DocumentData {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.DocumentData, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.docs[id].Clone())
	}
	return out
}

// Document returns a copy of one document.
func (w *Workspace) Document(id model.DocumentID) (model.DocumentData, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.docs[id]
	if !ok {
		return model.DocumentData{}, false
	}
	return d.Clone(), true
}

// Model opens a document as the primary document of a run.
func (w *Workspace) Model(id model.DocumentID) (*Model, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.docs[id]; !ok {
		return nil, rterrors.New(rterrors.ErrCodeDocumentNotFound, "document %q not found", id)
	}
	return &Model{docView: docView{ws: w, id: id}}, nil
}

// =============================================================================
// Document views
// =============================================================================

// docView reads one document. linked is set when the view was reached
// through a link reference.
type docView struct {
	ws     *Workspace
	id     model.DocumentID
	linked bool
	tx     *tx
}

func (d docView) ID() model.DocumentID { return d.id }

func (d docView) IsLinked() bool {
	if d.linked {
		return true
	}
	d.ws.mu.Lock()
	defer d.ws.mu.Unlock()
	return d.ws.docs[d.id].Linked
}

func (d docView) data() (*model.DocumentData, error) {
	doc, ok := d.ws.docs[d.id]
	if !ok {
		return nil, rterrors.New(rterrors.ErrCodeDocumentNotFound, "document %q not found", d.id)
	}
	return doc, nil
}

func (d docView) Rooms(ctx context.Context) ([]model.Room, error) {
	d.ws.mu.Lock()
	defer d.ws.mu.Unlock()
	doc, err := d.data()
	if err != nil {
		return nil, err
	}
	return slices.Clone(doc.Rooms), nil
}

func (d docView) Tags(ctx context.Context) ([]model.RoomTag, error) {
	d.ws.mu.Lock()
	defer d.ws.mu.Unlock()
	doc, err := d.data()
	if err != nil {
		return nil, err
	}
	tags := slices.Clone(doc.Tags)
	if d.tx != nil && !d.tx.closed {
		tags = append(tags, d.tx.tags...)
	}
	return tags, nil
}

func (d docView) Views(ctx context.Context) ([]model.View, error) {
	d.ws.mu.Lock()
	defer d.ws.mu.Unlock()
	doc, err := d.data()
	if err != nil {
		return nil, err
	}
	return slices.Clone(doc.Views), nil
}

// =============================================================================
// Model
// =============================================================================

// Model is one workspace document opened as a primary document.
// A Model serves one run at a time.
type Model struct {
	docView
}

var _ host.Model = (*Model)(nil)

// Links returns the primary document's link references.
func (m *Model) Links(ctx context.Context) ([]model.LinkReference, error) {
	m.ws.mu.Lock()
	defer m.ws.mu.Unlock()
	doc, err := m.data()
	if err != nil {
		return nil, err
	}
	return slices.Clone(doc.Links), nil
}

// ResolveLink returns the linked document when it exists in the workspace
// and the reference is loaded.
func (m *Model) ResolveLink(ctx context.Context, link model.LinkReference) (host.Document, bool, error) {
	m.ws.mu.Lock()
	defer m.ws.mu.Unlock()
	if !link.Loaded || link.Target == m.id {
		return nil, false, nil
	}
	if _, ok := m.ws.docs[link.Target]; !ok {
		return nil, false, nil
	}
	return docView{ws: m.ws, id: link.Target, linked: true}, true, nil
}

// TagStyles returns the primary document's label styles, with activations
// made in the open transaction applied.
func (m *Model) TagStyles(ctx context.Context) ([]model.TagStyle, error) {
	m.ws.mu.Lock()
	defer m.ws.mu.Unlock()
	doc, err := m.data()
	if err != nil {
		return nil, err
	}
	styles := slices.Clone(doc.Styles)
	if m.tx != nil && !m.tx.closed {
		for i := range styles {
			if slices.Contains(m.tx.activated, styles[i].ID) {
				styles[i].Active = true
			}
		}
	}
	return styles, nil
}

// ActivateStyle marks a style active. Inside a transaction the change is
// applied on commit.
func (m *Model) ActivateStyle(ctx context.Context, id model.ElementID) error {
	m.ws.mu.Lock()
	defer m.ws.mu.Unlock()
	doc, err := m.data()
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(doc.Styles, func(s model.TagStyle) bool { return s.ID == id })
	if idx < 0 {
		return rterrors.New(rterrors.ErrCodeNotFound, "tag style %q not found", id)
	}
	if m.tx != nil && !m.tx.closed {
		m.tx.activated = append(m.tx.activated, id)
		return nil
	}
	doc.Styles[idx].Active = true
	return nil
}

// CreateTag records a new tag in the open transaction.
func (m *Model) CreateTag(ctx context.Context, req model.TagRequest) (model.ElementID, error) {
	m.ws.mu.Lock()
	defer m.ws.mu.Unlock()
	if m.tx == nil || m.tx.closed {
		return "", fmt.Errorf("create tag: no open transaction")
	}
	doc, err := m.data()
	if err != nil {
		return "", err
	}
	if !slices.ContainsFunc(doc.Views, func(v model.View) bool { return v.ID == req.View }) {
		return "", fmt.Errorf("create tag: view %q not in document %q", req.View, m.id)
	}
	owner, ok := m.ws.docs[req.Room.Document]
	if !ok || !slices.ContainsFunc(owner.Rooms, func(r model.Room) bool { return r.ID == req.Room.Room }) {
		return "", fmt.Errorf("create tag: room %s not found", req.Room)
	}

	id := model.ElementID(uuid.NewString())
	m.tx.tags = append(m.tx.tags, model.RoomTag{
		ID:    id,
		Room:  req.Room,
		Point: req.Point,
		View:  req.View,
		Style: req.Style,
	})
	return id, nil
}

// Begin opens a transaction. Only one transaction may be open per model.
func (m *Model) Begin(ctx context.Context, name string) (host.Tx, error) {
	m.ws.mu.Lock()
	defer m.ws.mu.Unlock()
	if m.tx != nil && !m.tx.closed {
		return nil, fmt.Errorf("begin %q: transaction %q already open", name, m.tx.name)
	}
	m.tx = &tx{model: m, name: name, started: time.Now()}
	return m.tx, nil
}

// =============================================================================
// Transactions
// =============================================================================

type tx struct {
	model     *Model
	name      string
	tags      []model.RoomTag
	activated []model.ElementID
	closed    bool
	started   time.Time
}

func (t *tx) Commit(ctx context.Context) error {
	w := t.model.ws
	w.mu.Lock()
	if t.closed {
		w.mu.Unlock()
		return fmt.Errorf("commit %q: transaction closed", t.name)
	}
	doc, err := t.model.data()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	doc.Tags = append(doc.Tags, t.tags...)
	var turnedOn []model.ElementID
	for i := range doc.Styles {
		if !doc.Styles[i].Active && slices.Contains(t.activated, doc.Styles[i].ID) {
			doc.Styles[i].Active = true
			turnedOn = append(turnedOn, doc.Styles[i].ID)
		}
	}
	t.closed = true
	created := len(t.tags)
	onCommit := w.OnCommit
	w.mu.Unlock()

	if onCommit != nil {
		if err = onCommit(ctx); err != nil {
			t.undo(turnedOn)
			err = fmt.Errorf("write back: %w", err)
		}
	}
	observability.Store().OnCommit(ctx, backendName, created, time.Since(t.started), err)
	return err
}

// undo removes the transaction's tags and the style activations it made
// after a failed write-back.
func (t *tx) undo(turnedOn []model.ElementID) {
	w := t.model.ws
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, err := t.model.data()
	if err != nil {
		return
	}
	doc.Tags = slices.DeleteFunc(doc.Tags, func(tag model.RoomTag) bool {
		return slices.ContainsFunc(t.tags, func(c model.RoomTag) bool { return c.ID == tag.ID })
	})
	for i := range doc.Styles {
		if slices.Contains(turnedOn, doc.Styles[i].ID) {
			doc.Styles[i].Active = false
		}
	}
}

func (t *tx) Rollback(ctx context.Context) error {
	w := t.model.ws
	w.mu.Lock()
	wasOpen := !t.closed
	t.closed = true
	t.tags = nil
	t.activated = nil
	w.mu.Unlock()

	if wasOpen {
		observability.Store().OnRollback(ctx, backendName)
	}
	return nil
}
