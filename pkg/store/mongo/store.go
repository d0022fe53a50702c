// Package mongo stores documents in MongoDB and serves them as placement
// hosts.
//
// Each document is one record in the "documents" collection; its rooms,
// views, tag styles, link references and labels live in one collection each,
// keyed by the owning document. Labels created during a run are buffered by
// the model and written with a single InsertMany on commit, so a rolled-back
// run leaves the database untouched without requiring a replica set.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/model"
)

// DefaultDatabase is used when the URI names no database.
const DefaultDatabase = "roomtag"

// Store is a MongoDB document store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// DatabaseName extracts the database from a connection URI: the "db" query
// parameter, else the URI path, else [DefaultDatabase].
func DatabaseName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return DefaultDatabase
	}
	if db := u.Query().Get("db"); db != "" {
		return db
	}
	if db := strings.Trim(u.Path, "/"); db != "" {
		return db
	}
	return DefaultDatabase
}

// clientURI drops the "db" parameter, which the driver does not accept.
func clientURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	q := u.Query()
	if !q.Has("db") {
		return uri
	}
	q.Del("db")
	u.RawQuery = q.Encode()
	return u.String()
}

// Open connects to the server at uri and verifies the connection.
func Open(ctx context.Context, uri string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(clientURI(uri)))
	if err != nil {
		return nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "ping mongodb")
	}
	return &Store{client: client, db: client.Database(DatabaseName(uri))}, nil
}

// Close disconnects from the server.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Database returns the database name in use.
func (s *Store) Database() string { return s.db.Name() }

// Documents lists document ids.
func (s *Store) Documents(ctx context.Context) ([]model.DocumentID, error) {
	cur, err := s.db.Collection(collDocuments).Find(ctx, bson.D{},
		options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}).SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "list documents")
	}
	var docs []model.DocumentData
	if err := cur.All(ctx, &docs); err != nil {
		return nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "list documents")
	}
	ids := make([]model.DocumentID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

// Import replaces the stored content of each document.
func (s *Store) Import(ctx context.Context, docs ...model.DocumentData) error {
	for _, d := range docs {
		d = d.Clone()
		d.Normalize()
		if err := s.importDocument(ctx, d); err != nil {
			return rterrors.Wrap(rterrors.ErrCodeStore, err, "import document %q", d.ID)
		}
	}
	return nil
}

func (s *Store) importDocument(ctx context.Context, d model.DocumentData) error {
	_, err := s.db.Collection(collDocuments).ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: d.ID}}, d, options.Replace().SetUpsert(true))
	if err != nil {
		return err
	}
	filter := bson.D{{Key: "document", Value: d.ID}}
	for _, name := range childCollections {
		if _, err := s.db.Collection(name).DeleteMany(ctx, filter); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}
	for name, recs := range records(d) {
		if len(recs) == 0 {
			continue
		}
		if _, err := s.db.Collection(name).InsertMany(ctx, recs); err != nil {
			return fmt.Errorf("insert %s: %w", name, err)
		}
	}
	return nil
}

// Export reads every document.
func (s *Store) Export(ctx context.Context) ([]model.DocumentData, error) {
	ids, err := s.Documents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.DocumentData, 0, len(ids))
	for _, id := range ids {
		d, err := s.readDocument(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Store) readHeader(ctx context.Context, id model.DocumentID) (model.DocumentData, error) {
	var d model.DocumentData
	err := s.db.Collection(collDocuments).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return d, rterrors.New(rterrors.ErrCodeDocumentNotFound, "document %q not found", id)
	}
	if err != nil {
		return d, fmt.Errorf("read document %q: %w", id, err)
	}
	return d, nil
}

func (s *Store) readDocument(ctx context.Context, id model.DocumentID) (model.DocumentData, error) {
	d, err := s.readHeader(ctx, id)
	if err != nil {
		return d, err
	}
	if d.Rooms, err = s.rooms(ctx, id); err != nil {
		return d, err
	}
	if d.Tags, err = s.tags(ctx, id); err != nil {
		return d, err
	}
	if d.Views, err = s.views(ctx, id); err != nil {
		return d, err
	}
	if d.Links, err = s.links(ctx, id); err != nil {
		return d, err
	}
	if d.Styles, err = s.styles(ctx, id); err != nil {
		return d, err
	}
	return d, nil
}

// findAll decodes every record of one document in seq order.
func findAll[T any](ctx context.Context, coll *mongo.Collection, id model.DocumentID) ([]T, error) {
	cur, err := coll.Find(ctx, bson.D{{Key: "document", Value: id}},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("read %s of %q: %w", coll.Name(), id, err)
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("read %s of %q: %w", coll.Name(), id, err)
	}
	return out, nil
}

func (s *Store) rooms(ctx context.Context, id model.DocumentID) ([]model.Room, error) {
	recs, err := findAll[roomRecord](ctx, s.db.Collection(collRooms), id)
	if err != nil {
		return nil, err
	}
	out := make([]model.Room, len(recs))
	for i, r := range recs {
		out[i] = r.Room
	}
	return out, nil
}

func (s *Store) tags(ctx context.Context, id model.DocumentID) ([]model.RoomTag, error) {
	recs, err := findAll[tagRecord](ctx, s.db.Collection(collTags), id)
	if err != nil {
		return nil, err
	}
	out := make([]model.RoomTag, len(recs))
	for i, r := range recs {
		out[i] = r.RoomTag
	}
	return out, nil
}

func (s *Store) views(ctx context.Context, id model.DocumentID) ([]model.View, error) {
	recs, err := findAll[viewRecord](ctx, s.db.Collection(collViews), id)
	if err != nil {
		return nil, err
	}
	out := make([]model.View, len(recs))
	for i, r := range recs {
		out[i] = r.View
	}
	return out, nil
}

func (s *Store) styles(ctx context.Context, id model.DocumentID) ([]model.TagStyle, error) {
	recs, err := findAll[styleRecord](ctx, s.db.Collection(collStyles), id)
	if err != nil {
		return nil, err
	}
	out := make([]model.TagStyle, len(recs))
	for i, r := range recs {
		out[i] = r.TagStyle
	}
	return out, nil
}

func (s *Store) links(ctx context.Context, id model.DocumentID) ([]model.LinkReference, error) {
	recs, err := findAll[linkRecord](ctx, s.db.Collection(collLinks), id)
	if err != nil {
		return nil, err
	}
	out := make([]model.LinkReference, len(recs))
	for i, r := range recs {
		out[i] = r.LinkReference
		out[i].Transform = out[i].Transform.Normalize()
	}
	return out, nil
}
