// Package viewmap resolves which plan view hosts the labels of each level.
//
// Only non-template floor plans are eligible. When several eligible views
// share a level, the first one in input order wins, so callers get the same
// map for the same enumeration order.
package viewmap

import (
	"slices"

	"github.com/samber/lo"

	"github.com/rajithraghunath/roomtag/pkg/model"
)

// Map maps an elevation level to the view that receives its labels.
type Map map[model.ElementID]model.View

// Resolve builds the level→view map from every view in a document.
// Levels without an eligible view get no entry.
func Resolve(views []model.View) Map {
	eligible := lo.Filter(views, func(v model.View, _ int) bool {
		return v.Eligible()
	})
	// lo.GroupBy keeps input order within each group.
	groups := lo.GroupBy(eligible, func(v model.View) model.ElementID {
		return v.Level
	})
	m := make(Map, len(groups))
	for level, vs := range groups {
		m[level] = vs[0]
	}
	return m
}

// Lookup returns the view for a level.
func (m Map) Lookup(level model.ElementID) (model.View, bool) {
	v, ok := m[level]
	return v, ok
}

// Levels returns the mapped levels in sorted order.
func (m Map) Levels() []model.ElementID {
	levels := lo.Keys(m)
	slices.Sort(levels)
	return levels
}
