// Package placement places a label on every unlabeled room of a primary
// document and, optionally, of every document linked into it.
//
// # Architecture
//
// A run composes four steps:
//
//  1. Resolve views: build the level→view map of the primary document ([viewmap]).
//  2. Resolve the tag style: pick a loaded style and activate it; no style is fatal.
//  3. Tag primary rooms: classify rooms against the document's labels ([classify])
//     and label each taggable, unlabeled room at its own location.
//  4. Tag linked rooms: for every link reference ([linkxform]), classify the
//     linked document's rooms against the linked document's own labels,
//     transform each location into the primary frame and label it there.
//
// Only run-level problems are errors. A room whose level has no view, a link
// that cannot be resolved, or a label the host refuses to create is recorded
// as a [Skip] and the run continues.
//
// # Usage
//
//	runner := placement.NewRunner(logger)
//	report, err := runner.PlaceAll(ctx, model, placement.Options{
//	    IncludeLinked: true,
//	})
//	if err != nil {
//	    return err // nothing was placed
//	}
//	fmt.Printf("Room tags placed: %d\n", report.Placed)
//
// Runs against one primary document must be serialized by the caller; see
// the runlock package.
package placement

import (
	"io"

	"github.com/charmbracelet/log"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
)

// DefaultTransactionName names the host transaction wrapping a run.
const DefaultTransactionName = "Tag All Rooms"

// Options configures one placement run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// IncludeLinked also labels rooms from linked documents.
	IncludeLinked bool `json:"include_linked"`

	// TagStyle selects a style by id or name. Empty means the first loaded style.
	TagStyle string `json:"tag_style,omitempty"`

	// Where is an optional filter expression; rooms it rejects are ignored.
	// See [CompileFilter] for the available variables.
	Where string `json:"where,omitempty"`

	// DryRun computes the report without creating any label.
	DryRun bool `json:"dry_run,omitempty"`

	// Runtime options (not serialized)
	TransactionName string      `json:"-"`
	Logger          *log.Logger `json:"-"`

	filter    *Filter
	validated bool
}

// ValidateAndSetDefaults compiles the filter and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	f, err := CompileFilter(o.Where)
	if err != nil {
		return err
	}
	o.filter = f
	if o.TransactionName == "" {
		o.TransactionName = DefaultTransactionName
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Validate checks the options without keeping any state.
func (o Options) Validate() error {
	if _, err := CompileFilter(o.Where); err != nil {
		return err
	}
	return nil
}

// errNoStyle builds the fatal error for a document without usable tag styles.
func errNoStyle(format string, args ...any) error {
	return rterrors.New(rterrors.ErrCodeNoTagStyle, format, args...)
}
