package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/model"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readHeader(ctx context.Context, q querier, id model.DocumentID) (model.DocumentData, error) {
	d := model.DocumentData{ID: id}
	row := q.QueryRowContext(ctx, `SELECT title, linked FROM documents WHERE id = ?`, id)
	if err := row.Scan(&d.Title, &d.Linked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return d, rterrors.New(rterrors.ErrCodeDocumentNotFound, "document %q not found", id)
		}
		return d, fmt.Errorf("read document %q: %w", id, err)
	}
	return d, nil
}

func readRooms(ctx context.Context, q querier, id model.DocumentID) ([]model.Room, error) {
	rows, err := q.QueryContext(ctx, `
        SELECT id, name, number, level, x, y, area
        FROM rooms
        WHERE document = ?
        ORDER BY rowid
    `, id)
	if err != nil {
		return nil, fmt.Errorf("read rooms of %q: %w", id, err)
	}
	defer rows.Close()

	var out []model.Room
	for rows.Next() {
		r := model.Room{Document: id}
		var x, y sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.Name, &r.Number, &r.Level, &x, &y, &r.Area); err != nil {
			return nil, err
		}
		if x.Valid && y.Valid {
			r.Location = &orb.Point{x.Float64, y.Float64}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func readTags(ctx context.Context, q querier, id model.DocumentID) ([]model.RoomTag, error) {
	rows, err := q.QueryContext(ctx, `
        SELECT id, room_document, room, x, y, view, style
        FROM room_tags
        WHERE document = ?
        ORDER BY rowid
    `, id)
	if err != nil {
		return nil, fmt.Errorf("read tags of %q: %w", id, err)
	}
	defer rows.Close()

	var out []model.RoomTag
	for rows.Next() {
		var t model.RoomTag
		if err := rows.Scan(&t.ID, &t.Room.Document, &t.Room.Room, &t.Point[0], &t.Point[1], &t.View, &t.Style); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func readViews(ctx context.Context, q querier, id model.DocumentID) ([]model.View, error) {
	rows, err := q.QueryContext(ctx, `
        SELECT id, name, level, kind, template
        FROM views
        WHERE document = ?
        ORDER BY rowid
    `, id)
	if err != nil {
		return nil, fmt.Errorf("read views of %q: %w", id, err)
	}
	defer rows.Close()

	var out []model.View
	for rows.Next() {
		var v model.View
		if err := rows.Scan(&v.ID, &v.Name, &v.Level, &v.Kind, &v.Template); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func readStyles(ctx context.Context, q querier, id model.DocumentID) ([]model.TagStyle, error) {
	rows, err := q.QueryContext(ctx, `
        SELECT id, name, family, active
        FROM tag_styles
        WHERE document = ?
        ORDER BY rowid
    `, id)
	if err != nil {
		return nil, fmt.Errorf("read tag styles of %q: %w", id, err)
	}
	defer rows.Close()

	var out []model.TagStyle
	for rows.Next() {
		var st model.TagStyle
		if err := rows.Scan(&st.ID, &st.Name, &st.Family, &st.Active); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func readLinks(ctx context.Context, q querier, id model.DocumentID) ([]model.LinkReference, error) {
	rows, err := q.QueryContext(ctx, `
        SELECT id, name, target, transform, loaded
        FROM links
        WHERE document = ?
        ORDER BY rowid
    `, id)
	if err != nil {
		return nil, fmt.Errorf("read links of %q: %w", id, err)
	}
	defer rows.Close()

	var out []model.LinkReference
	for rows.Next() {
		var l model.LinkReference
		var transform string
		if err := rows.Scan(&l.ID, &l.Name, &l.Target, &transform, &l.Loaded); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(transform), &l.Transform); err != nil {
			return nil, fmt.Errorf("link %s transform: %w", l.ID, err)
		}
		l.Transform = l.Transform.Normalize()
		out = append(out, l)
	}
	return out, rows.Err()
}
