// Package linkxform maps points from linked documents into the primary
// document's coordinate frame.
//
// A link reference carries the affine placement of its target document.
// [Resolve] turns a reference into a live [Link] or reports why it is
// unavailable; an unavailable link means "skip every room from it", never
// "abort the run".
//
// Only points are transformed. Elevation levels are not reprojected: a linked
// room's level id is looked up as-is in the primary document's level→view map,
// which assumes both documents share level ids.
package linkxform

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/rajithraghunath/roomtag/pkg/host"
	"github.com/rajithraghunath/roomtag/pkg/model"
)

// Link is a resolved link reference.
type Link struct {
	Ref      model.LinkReference
	Document host.Document

	transform model.Transform
}

// Apply maps a point from the linked frame into the primary frame.
func (l Link) Apply(p orb.Point) orb.Point {
	return l.transform.OfPoint(p)
}

// Func returns Apply as a plain function.
func (l Link) Func() func(orb.Point) orb.Point {
	return l.Apply
}

// UnavailableError explains why a link reference could not be resolved.
type UnavailableError struct {
	Link   model.ElementID
	Reason string
	Cause  error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link %s unavailable: %s: %v", e.Link, e.Reason, e.Cause)
	}
	return fmt.Sprintf("link %s unavailable: %s", e.Link, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

// Resolve resolves ref through r. Every failure is an *UnavailableError.
func Resolve(ctx context.Context, r host.LinkResolver, ref model.LinkReference) (Link, error) {
	unavailable := func(reason string, cause error) (Link, error) {
		return Link{}, &UnavailableError{Link: ref.ID, Reason: reason, Cause: cause}
	}

	if !ref.Loaded {
		return unavailable("not loaded", nil)
	}
	doc, ok, err := r.ResolveLink(ctx, ref)
	switch {
	case err != nil:
		return unavailable("resolve failed", err)
	case !ok || doc == nil:
		return unavailable(fmt.Sprintf("target %q not found", ref.Target), nil)
	case !doc.IsLinked():
		return unavailable(fmt.Sprintf("target %q is not a linked document", doc.ID()), nil)
	}

	return Link{
		Ref:       ref,
		Document:  doc,
		transform: ref.Transform.Normalize(),
	}, nil
}
