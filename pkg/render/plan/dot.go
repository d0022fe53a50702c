package plan

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"
	"github.com/paulmach/orb"
	"github.com/samber/lo"

	"github.com/rajithraghunath/roomtag/pkg/model"
	"github.com/rajithraghunath/roomtag/pkg/placement"
)

// DefaultScale is the number of points per model unit.
const DefaultScale = 20.0

const (
	primaryColor = "#2563eb"
	linkedColor  = "#d97706"
)

// Options configures preview rendering.
type Options struct {
	// Scale converts model units to points. Zero uses DefaultScale.
	Scale float64

	// Labels shows the room id next to each label.
	Labels bool
}

// ToDOT converts a report's placements to Graphviz DOT source.
// Positions are given in points (inputscale=72).
func ToDOT(r *placement.Report, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	points := lo.Map(r.Placements, func(p placement.Placement, _ int) orb.Point { return p.Point })
	origin := orb.MultiPoint(points).Bound().Min

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=false;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	fmt.Fprintf(&buf, "  label=%q;\n", fmt.Sprintf("%s: %d room tags", r.Document, r.Placed))
	buf.WriteString("  labelloc=t;\n")
	buf.WriteString("  node [shape=circle, style=filled, width=0.12, fixedsize=true, fontsize=9];\n")
	buf.WriteString("\n")

	byView := lo.GroupBy(r.Placements, func(p placement.Placement) model.ElementID { return p.View })
	views := lo.Keys(byView)
	slices.Sort(views)

	for _, view := range views {
		fmt.Fprintf(&buf, "  // view %s\n", view)
		for _, p := range byView[view] {
			x := (p.Point[0] - origin[0]) * scale
			y := (p.Point[1] - origin[1]) * scale
			fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(p), fmtAttrs(p, x, y, opts.Labels))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(p placement.Placement) string {
	return fmt.Sprintf("%s@%s", p.Room, p.View)
}

func fmtAttrs(p placement.Placement, x, y float64, labels bool) string {
	color := primaryColor
	if p.Linked() {
		color = linkedColor
	}
	label := ""
	if labels {
		label = string(p.Room.Room)
	}
	return fmt.Sprintf("pos=\"%.2f,%.2f!\", fillcolor=%q, color=%q, xlabel=%q, label=\"\", tooltip=%q",
		x, y, color, color, label, fmt.Sprintf("%s (%s, level %s)", p.Room, p.View, p.Level))
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
