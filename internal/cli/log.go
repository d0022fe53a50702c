package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Placed 42 room tags (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks writes placement and store events to the logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnRunStart(ctx context.Context, doc string, includeLinked bool) {
	h.logger.Debug("run started", "document", doc, "include_linked", includeLinked)
}

func (h *logHooks) OnRunComplete(ctx context.Context, doc string, placed, skipped int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("run failed", "document", doc, "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("run complete", "document", doc, "placed", placed, "skipped", skipped, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnSkip(ctx context.Context, doc, reason string) {
	h.logger.Debug("skip", "document", doc, "reason", reason)
}

func (h *logHooks) OnCommit(ctx context.Context, backend string, tags int, d time.Duration, err error) {
	h.logger.Debug("commit", "backend", backend, "tags", tags, "duration", d.Round(time.Millisecond), "err", err)
}

func (h *logHooks) OnRollback(ctx context.Context, backend string) {
	h.logger.Debug("rollback", "backend", backend)
}
