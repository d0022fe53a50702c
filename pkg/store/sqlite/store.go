// Package sqlite stores documents in a SQLite database and serves them as
// placement hosts.
//
// A run's transaction is a SQL transaction: labels created during the run are
// rows inserted inside it, visible to the run's own reads and discarded on
// rollback. The database allows one open connection, so reads made while a
// run is open go through that run's transaction.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/model"
)

//go:embed schema.sql
var schema string

// Store is a SQLite document store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "open %s", path)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "apply schema to %s", path)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Documents lists document ids in insertion order.
func (s *Store) Documents(ctx context.Context) ([]model.DocumentID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM documents ORDER BY rowid`)
	if err != nil {
		return nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "list documents")
	}
	defer rows.Close()

	var ids []model.DocumentID
	for rows.Next() {
		var id model.DocumentID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Import replaces the stored content of each document.
func (s *Store) Import(ctx context.Context, docs ...model.DocumentData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rterrors.Wrap(rterrors.ErrCodeStore, err, "begin import")
	}
	defer tx.Rollback()

	for _, d := range docs {
		d = d.Clone()
		d.Normalize()
		if err := importDocument(ctx, tx, d); err != nil {
			return rterrors.Wrap(rterrors.ErrCodeStore, err, "import document %q", d.ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return rterrors.Wrap(rterrors.ErrCodeStore, err, "commit import")
	}
	return nil
}

func importDocument(ctx context.Context, tx *sql.Tx, d model.DocumentData) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, d.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO documents (id, title, linked) VALUES (?, ?, ?)`,
		d.ID, d.Title, d.Linked); err != nil {
		return err
	}

	for _, r := range d.Rooms {
		var x, y sql.NullFloat64
		if r.Location != nil {
			x = sql.NullFloat64{Float64: r.Location[0], Valid: true}
			y = sql.NullFloat64{Float64: r.Location[1], Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO rooms (document, id, name, number, level, x, y, area)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        `, d.ID, r.ID, r.Name, r.Number, r.Level, x, y, r.Area); err != nil {
			return fmt.Errorf("room %s: %w", r.ID, err)
		}
	}
	for _, v := range d.Views {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO views (document, id, name, level, kind, template)
            VALUES (?, ?, ?, ?, ?, ?)
        `, d.ID, v.ID, v.Name, v.Level, v.Kind, v.Template); err != nil {
			return fmt.Errorf("view %s: %w", v.ID, err)
		}
	}
	for _, st := range d.Styles {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO tag_styles (document, id, name, family, active)
            VALUES (?, ?, ?, ?, ?)
        `, d.ID, st.ID, st.Name, st.Family, st.Active); err != nil {
			return fmt.Errorf("tag style %s: %w", st.ID, err)
		}
	}
	for _, l := range d.Links {
		transform, err := json.Marshal(l.Transform)
		if err != nil {
			return fmt.Errorf("link %s: %w", l.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO links (document, id, name, target, transform, loaded)
            VALUES (?, ?, ?, ?, ?, ?)
        `, d.ID, l.ID, l.Name, l.Target, string(transform), l.Loaded); err != nil {
			return fmt.Errorf("link %s: %w", l.ID, err)
		}
	}
	for _, t := range d.Tags {
		if err := insertTag(ctx, tx, d.ID, t); err != nil {
			return fmt.Errorf("tag %s: %w", t.ID, err)
		}
	}
	return nil
}

func insertTag(ctx context.Context, q querier, doc model.DocumentID, t model.RoomTag) error {
	_, err := q.ExecContext(ctx, `
        INSERT INTO room_tags (document, id, room_document, room, x, y, view, style)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `, doc, t.ID, t.Room.Document, t.Room.Room, t.Point[0], t.Point[1], t.View, t.Style)
	return err
}

// Export reads every document.
func (s *Store) Export(ctx context.Context) ([]model.DocumentData, error) {
	ids, err := s.Documents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.DocumentData, 0, len(ids))
	for _, id := range ids {
		d, err := readDocument(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func readDocument(ctx context.Context, q querier, id model.DocumentID) (model.DocumentData, error) {
	d, err := readHeader(ctx, q, id)
	if err != nil {
		return d, err
	}
	if d.Rooms, err = readRooms(ctx, q, id); err != nil {
		return d, err
	}
	if d.Tags, err = readTags(ctx, q, id); err != nil {
		return d, err
	}
	if d.Views, err = readViews(ctx, q, id); err != nil {
		return d, err
	}
	if d.Links, err = readLinks(ctx, q, id); err != nil {
		return d, err
	}
	if d.Styles, err = readStyles(ctx, q, id); err != nil {
		return d, err
	}
	return d, nil
}
