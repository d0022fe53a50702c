package mongo

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/host"
	"github.com/rajithraghunath/roomtag/pkg/model"
	"github.com/rajithraghunath/roomtag/pkg/observability"
)

const backendName = "mongodb"

// Model opens a document as the primary document of a run.
func (s *Store) Model(ctx context.Context, id model.DocumentID) (*Model, error) {
	if _, err := s.readHeader(ctx, id); err != nil {
		return nil, err
	}
	m := &Model{}
	m.docView = docView{store: s, model: m, id: id}
	return m, nil
}

// Model is one stored document opened as a primary document. Writes made
// inside a transaction are held in memory until commit.
type Model struct {
	docView

	mu sync.Mutex
	tx *tx
}

var _ host.Model = (*Model)(nil)

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
	h, err := d.store.readHeader(context.Background(), d.id)
	return err == nil && h.Linked
}

func (d docView) Rooms(ctx context.Context) ([]model.Room, error) {
	return d.store.rooms(ctx, d.id)
}

// Tags includes labels buffered by the primary model's open transaction.
func (d docView) Tags(ctx context.Context) ([]model.RoomTag, error) {
	tags, err := d.store.tags(ctx, d.id)
	if err != nil {
		return nil, err
	}
	if d.id == d.model.id {
		tags = append(tags, d.model.pending()...)
	}
	return tags, nil
}

func (d docView) Views(ctx context.Context) ([]model.View, error) {
	return d.store.views(ctx, d.id)
}

func (m *Model) pending() []model.RoomTag {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tx == nil {
		return nil
	}
	return slices.Clone(m.tx.tags)
}

// Links returns the primary document's link references.
func (m *Model) Links(ctx context.Context) ([]model.LinkReference, error) {
	return m.store.links(ctx, m.id)
}

// ResolveLink returns the linked document if it is stored and the reference
// is loaded.
func (m *Model) ResolveLink(ctx context.Context, link model.LinkReference) (host.Document, bool, error) {
	if !link.Loaded || link.Target == m.id {
		return nil, false, nil
	}
	if _, err := m.store.readHeader(ctx, link.Target); err != nil {
		if rterrors.Is(err, rterrors.ErrCodeDocumentNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return docView{store: m.store, model: m, id: link.Target, linked: true}, true, nil
}

// TagStyles returns the primary document's label styles with buffered
// activations applied.
func (m *Model) TagStyles(ctx context.Context) ([]model.TagStyle, error) {
	styles, err := m.store.styles(ctx, m.id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tx != nil {
		for i := range styles {
			if slices.Contains(m.tx.activated, styles[i].ID) {
				styles[i].Active = true
			}
		}
	}
	return styles, nil
}

// ActivateStyle marks a style active, on commit when a transaction is open.
func (m *Model) ActivateStyle(ctx context.Context, id model.ElementID) error {
	styles, err := m.store.styles(ctx, m.id)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(styles, func(s model.TagStyle) bool { return s.ID == id }) {
		return rterrors.New(rterrors.ErrCodeNotFound, "tag style %q not found", id)
	}

	m.mu.Lock()
	if m.tx != nil {
		m.tx.activated = append(m.tx.activated, id)
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()
	return m.store.activate(ctx, m.id, []model.ElementID{id})
}

// CreateTag buffers a new label in the open transaction.
func (m *Model) CreateTag(ctx context.Context, req model.TagRequest) (model.ElementID, error) {
	m.mu.Lock()
	open := m.tx != nil
	m.mu.Unlock()
	if !open {
		return "", fmt.Errorf("create tag: no open transaction")
	}

	views, err := m.store.views(ctx, m.id)
	if err != nil {
		return "", fmt.Errorf("create tag: %w", err)
	}
	if !slices.ContainsFunc(views, func(v model.View) bool { return v.ID == req.View }) {
		return "", fmt.Errorf("create tag: view %q not in document %q", req.View, m.id)
	}
	n, err := m.store.db.Collection(collRooms).CountDocuments(ctx,
		bson.D{{Key: "document", Value: req.Room.Document}, {Key: "id", Value: req.Room.Room}})
	if err != nil {
		return "", fmt.Errorf("create tag: %w", err)
	}
	if n == 0 {
		return "", fmt.Errorf("create tag: room %s not found", req.Room)
	}

	tag := model.RoomTag{
		ID:    model.ElementID(uuid.NewString()),
		Room:  req.Room,
		Point: req.Point,
		View:  req.View,
		Style: req.Style,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tx == nil {
		return "", fmt.Errorf("create tag: transaction closed")
	}
	m.tx.tags = append(m.tx.tags, tag)
	return tag.ID, nil
}

// Begin opens a buffered transaction.
func (m *Model) Begin(ctx context.Context, name string) (host.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tx != nil {
		return nil, fmt.Errorf("begin %q: transaction %q already open", name, m.tx.name)
	}
	m.tx = &tx{model: m, name: name, started: time.Now()}
	return m.tx, nil
}

func (s *Store) activate(ctx context.Context, doc model.DocumentID, ids []model.ElementID) error {
	_, err := s.db.Collection(collStyles).UpdateMany(ctx,
		bson.D{{Key: "document", Value: doc}, {Key: "id", Value: bson.D{{Key: "$in", Value: ids}}}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "active", Value: true}}}})
	if err != nil {
		return fmt.Errorf("activate tag styles: %w", err)
	}
	return nil
}

type tx struct {
	model     *Model
	name      string
	tags      []model.RoomTag
	activated []model.ElementID
	started   time.Time
}

// detach closes the transaction and returns its buffered writes.
func (t *tx) detach() ([]model.RoomTag, []model.ElementID, bool) {
	t.model.mu.Lock()
	defer t.model.mu.Unlock()
	if t.model.tx != t {
		return nil, nil, false
	}
	t.model.tx = nil
	return t.tags, t.activated, true
}

func (t *tx) Commit(ctx context.Context) error {
	tags, activated, ok := t.detach()
	if !ok {
		return fmt.Errorf("commit %q: transaction closed", t.name)
	}
	err := t.model.store.write(ctx, t.model.id, tags, activated)
	observability.Store().OnCommit(ctx, backendName, len(tags), time.Since(t.started), err)
	if err != nil {
		return fmt.Errorf("commit %q: %w", t.name, err)
	}
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if _, _, ok := t.detach(); ok {
		observability.Store().OnRollback(ctx, backendName)
	}
	return nil
}

// write applies style activations and then appends tags after the document's
// existing labels. A failed insert removes whatever part of the batch landed.
func (s *Store) write(ctx context.Context, doc model.DocumentID, tags []model.RoomTag, activated []model.ElementID) error {
	if len(activated) > 0 {
		if err := s.activate(ctx, doc, activated); err != nil {
			return err
		}
	}
	if len(tags) == 0 {
		return nil
	}
	coll := s.db.Collection(collTags)
	n, err := coll.CountDocuments(ctx, bson.D{{Key: "document", Value: doc}})
	if err != nil {
		return err
	}
	seq := int(n)
	if _, err := coll.InsertMany(ctx, tagRecords(doc, seq, tags)); err != nil {
		if _, derr := coll.DeleteMany(context.WithoutCancel(ctx), tagFilter(doc, seq, tags)); derr != nil {
			return fmt.Errorf("insert room tags: %w (cleanup: %v)", err, derr)
		}
		return fmt.Errorf("insert room tags: %w", err)
	}
	return nil
}
