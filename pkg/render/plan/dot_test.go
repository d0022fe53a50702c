package plan

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/rajithraghunath/roomtag/pkg/model"
	"github.com/rajithraghunath/roomtag/pkg/placement"
)

func testReport() *placement.Report {
	return &placement.Report{
		Document: "tower",
		Placed:   2,
		Placements: []placement.Placement{
			{Room: model.RoomRef{Document: "tower", Room: "r1"}, View: "v1", Level: "L1", Point: orb.Point{2, 3}},
			{Room: model.RoomRef{Document: "core", Room: "c1"}, View: "v1", Level: "L1", Point: orb.Point{4, 5}, Link: "k1"},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testReport(), Options{Scale: 10, Labels: true})

	for _, want := range []string{
		"layout=neato;",
		`"tower/r1@v1" [pos="0.00,0.00!"`,
		`"core/c1@v1" [pos="20.00,20.00!"`,
		`fillcolor="` + linkedColor + `"`,
		`xlabel="r1"`,
		`tower: 2 room tags`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDefaultScale(t *testing.T) {
	dot := ToDOT(testReport(), Options{})
	if !strings.Contains(dot, `pos="40.00,40.00!"`) {
		t.Errorf("default scale not applied:\n%s", dot)
	}
	if strings.Contains(dot, `xlabel="r1"`) {
		t.Error("labels shown without Options.Labels")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testReport(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("output is not SVG: %.80s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="5pt" viewBox="0.00 0.00 100.50 50.25" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.50 50.25" width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if plain := []byte("<svg><g/></svg>"); !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}
