package placement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/rajithraghunath/roomtag/pkg/classify"
	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/host"
	"github.com/rajithraghunath/roomtag/pkg/linkxform"
	"github.com/rajithraghunath/roomtag/pkg/model"
	"github.com/rajithraghunath/roomtag/pkg/observability"
	"github.com/rajithraghunath/roomtag/pkg/viewmap"
)

// Runner executes placement runs.
//
// The Runner holds no run state; every call to PlaceAll works on a fresh
// snapshot of the host model.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{Logger: logger}
}

// PlaceAll labels every unlabeled, taggable room of the primary document and,
// with opts.IncludeLinked, of every resolvable linked document.
//
// It returns an error only when the run cannot happen at all (no tag style,
// an invalid filter, a store failure); in that case nothing is persisted.
// Otherwise the report lists what was placed and what was skipped.
func (r *Runner) PlaceAll(ctx context.Context, m host.Model, opts Options) (report *Report, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger.With("document", m.ID())

	start := time.Now()
	doc := string(m.ID())
	observability.Placement().OnRunStart(ctx, doc, opts.IncludeLinked)
	defer func() {
		placed, skipped := 0, 0
		if report != nil {
			placed, skipped = report.Placed, len(report.Skips)
		}
		observability.Placement().OnRunComplete(ctx, doc, placed, skipped, time.Since(start), err)
	}()

	tx, err := m.Begin(ctx, opts.TransactionName)
	if err != nil {
		return nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "begin %q", opts.TransactionName)
	}
	finished := false
	defer func() {
		if !finished {
			_ = tx.Rollback(ctx)
		}
	}()

	// Stage 1: level → view map
	views, err := m.Views(ctx)
	if err != nil {
		return nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "read views")
	}
	levels := viewmap.Resolve(views)
	logger.Debug("resolved views", "views", len(views), "levels", len(levels))

	// Stage 2: tag style
	style, err := r.resolveStyle(ctx, m, opts.TagStyle)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved tag style", "style", style.ID, "name", style.Name)

	// Stage 3: primary document
	rooms, err := m.Rooms(ctx)
	if err != nil {
		return nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "read rooms")
	}
	tags, err := m.Tags(ctx)
	if err != nil {
		return nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "read tags")
	}

	s := &session{
		ctx:     ctx,
		creator: m,
		levels:  levels,
		style:   style.ID,
		dryRun:  opts.DryRun,
		ledger:  tags,
		logger:  logger,
		report: &Report{
			Document:      m.ID(),
			Style:         style.ID,
			IncludeLinked: opts.IncludeLinked,
			DryRun:        opts.DryRun,
			Placements:    []Placement{},
			Skips:         []Skip{},
			StartedAt:     start,
			Stats:         Stats{Views: len(views), Levels: len(levels)},
		},
	}

	primary := filterRooms(logger, opts.filter, classify.Taggable(rooms), false)
	s.report.Stats.PrimaryRooms = len(primary)
	for _, room := range classify.Candidates(primary, tags) {
		s.apply(planTag(room, *room.Location, levels, style.ID, ""))
	}
	logger.Info("tagged primary rooms", "placed", s.report.Placed, "skipped", len(s.report.Skips))

	// Stage 4: linked documents
	if opts.IncludeLinked {
		if err := r.placeLinked(ctx, m, opts, s); err != nil {
			return nil, err
		}
	}

	s.report.Remaining = len(classify.Candidates(primary, s.ledger))
	s.report.Stats.Duration = time.Since(start)

	if opts.DryRun {
		s.report.Succeeded = true
		logger.Info("dry run complete", "would_place", s.report.Placed)
		return s.report, nil
	}

	finished = true
	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "commit %q", opts.TransactionName)
	}
	s.report.Succeeded = true
	return s.report, nil
}

func (r *Runner) placeLinked(ctx context.Context, m host.Model, opts Options, s *session) error {
	links, err := m.Links(ctx)
	if err != nil {
		return rterrors.Wrap(rterrors.ErrCodeStore, err, "read links")
	}
	s.report.Stats.Links = len(links)

	before := s.report.Placed
	for _, ref := range links {
		link, err := linkxform.Resolve(ctx, m, ref)
		if err != nil {
			var u *linkxform.UnavailableError
			detail := err.Error()
			if errors.As(err, &u) {
				detail = u.Reason
			}
			s.skip(Skip{Reason: SkipUnresolvedLink, Link: ref.ID, Detail: detail})
			continue
		}

		rooms, err := link.Document.Rooms(ctx)
		if err != nil {
			s.skip(Skip{Reason: SkipReadFailed, Link: ref.ID, Detail: fmt.Sprintf("read rooms: %v", err)})
			continue
		}
		// Dedup is per document: only the linked document's own labels count.
		tags, err := link.Document.Tags(ctx)
		if err != nil {
			s.skip(Skip{Reason: SkipReadFailed, Link: ref.ID, Detail: fmt.Sprintf("read tags: %v", err)})
			continue
		}

		taggable := filterRooms(s.logger, opts.filter, classify.Taggable(rooms), true)
		s.report.Stats.LinkedRooms += len(taggable)
		for _, room := range classify.Candidates(taggable, tags) {
			s.apply(planTag(room, link.Apply(*room.Location), s.levels, s.style, ref.ID))
		}
		s.logger.Debug("tagged linked document", "link", ref.ID, "target", link.Document.ID(), "rooms", len(taggable))
	}
	s.logger.Info("tagged linked rooms", "links", len(links), "placed", s.report.Placed-before)
	return nil
}

// resolveStyle picks the configured style, or the first loaded one, and
// activates it if needed.
func (r *Runner) resolveStyle(ctx context.Context, m host.StyleProvider, want string) (model.TagStyle, error) {
	styles, err := m.TagStyles(ctx)
	if err != nil {
		return model.TagStyle{}, rterrors.Wrap(rterrors.ErrCodeStore, err, "read tag styles")
	}
	if len(styles) == 0 {
		return model.TagStyle{}, errNoStyle("No room tag family loaded.")
	}

	style := styles[0]
	if want != "" {
		found := false
		for _, st := range styles {
			if string(st.ID) == want || st.Name == want {
				style, found = st, true
				break
			}
		}
		if !found {
			return model.TagStyle{}, errNoStyle("room tag style %q is not loaded", want)
		}
	}

	if !style.Active {
		if err := m.ActivateStyle(ctx, style.ID); err != nil {
			return model.TagStyle{}, rterrors.Wrap(rterrors.ErrCodeNoTagStyle, err, "activate room tag style %q", style.ID)
		}
		style.Active = true
	}
	return style, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Per-room outcomes
// =============================================================================

// outcome is the plan for one room: either a label request or a skip.
type outcome struct {
	request *model.TagRequest
	level   model.ElementID
	link    model.ElementID
	skip    *Skip
}

// planTag decides where a room's label goes. at is already in the primary
// frame. Level ids are looked up unchanged, even for linked rooms.
func planTag(room model.Room, at orb.Point, levels viewmap.Map, style, link model.ElementID) outcome {
	ref := room.Ref()
	view, ok := levels.Lookup(room.Level)
	if !ok {
		return outcome{skip: &Skip{
			Reason: SkipNoView,
			Room:   &ref,
			Level:  room.Level,
			Link:   link,
			Detail: fmt.Sprintf("no plan view for level %q", room.Level),
		}}
	}
	return outcome{
		request: &model.TagRequest{Room: ref, Point: at, View: view.ID, Style: style},
		level:   room.Level,
		link:    link,
	}
}

// session folds outcomes of one run into its report.
type session struct {
	ctx     context.Context
	creator host.TagCreator
	levels  viewmap.Map
	style   model.ElementID
	dryRun  bool
	ledger  []model.RoomTag
	logger  *log.Logger
	report  *Report
}

func (s *session) apply(o outcome) {
	if o.skip != nil {
		s.skip(*o.skip)
		return
	}

	req := *o.request
	var id model.ElementID
	if !s.dryRun {
		var err error
		id, err = s.creator.CreateTag(s.ctx, req)
		if err != nil {
			ref := req.Room
			s.skip(Skip{Reason: SkipCreateFailed, Room: &ref, Level: o.level, Link: o.link, Detail: err.Error()})
			return
		}
	}

	s.ledger = append(s.ledger, model.RoomTag{ID: id, Room: req.Room, Point: req.Point, View: req.View, Style: req.Style})
	s.report.Placed++
	s.report.Placements = append(s.report.Placements, Placement{
		Room:  req.Room,
		Tag:   id,
		View:  req.View,
		Level: o.level,
		Point: req.Point,
		Link:  o.link,
	})
	s.logger.Debug("placed room tag", "room", req.Room, "view", req.View, "x", req.Point[0], "y", req.Point[1])
}

func (s *session) skip(sk Skip) {
	s.report.Skips = append(s.report.Skips, sk)
	observability.Placement().OnSkip(s.ctx, string(s.report.Document), string(sk.Reason))
	s.logger.Debug("skipped", "reason", sk.Reason, "room", sk.Room, "link", sk.Link, "detail", sk.Detail)
}

// filterRooms applies the optional room filter. Rooms whose evaluation fails
// are dropped with a warning.
func filterRooms(logger *log.Logger, f *Filter, rooms []model.Room, linked bool) []model.Room {
	if f == nil {
		return rooms
	}
	out := make([]model.Room, 0, len(rooms))
	for _, room := range rooms {
		ok, err := f.Match(room, linked)
		if err != nil {
			logger.Warn("room filter failed", "room", room.Ref(), "err", err)
			continue
		}
		if ok {
			out = append(out, room)
		}
	}
	return out
}
