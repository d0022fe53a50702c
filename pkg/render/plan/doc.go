// Package plan renders a placement report as a Graphviz preview.
//
// # Overview
//
// Every placement becomes a point-shaped node pinned at its label position
// (neato layout with fixed positions), so the SVG is a scatter plot of
// where labels went in the primary document's frame. Labels of primary
// rooms and of linked rooms use different colors; nodes are emitted grouped
// by view.
//
// # Usage
//
//	dot := plan.ToDOT(report, plan.Options{Scale: 20})
//	svg, err := plan.RenderSVG(ctx, dot)
//
// Coordinates are translated so the lower-left label sits at the origin,
// then multiplied by Scale to get points.
package plan
