// Package server exposes placement runs over HTTP.
//
// Routes:
//
//	GET  /healthz                                  liveness
//	GET  /v1/documents                             stored document ids
//	POST /v1/documents/{doc}/tag-runs              run placement, returns the report
//	GET  /v1/documents/{doc}/tag-runs/latest       last stored report
//
// Runs are serialized per document through a [runlock.Locker]; a request
// for a document with a run in progress fails with 409 instead of waiting.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
	"github.com/rajithraghunath/roomtag/pkg/history"
	"github.com/rajithraghunath/roomtag/pkg/model"
	"github.com/rajithraghunath/roomtag/pkg/placement"
	"github.com/rajithraghunath/roomtag/pkg/runlock"
	"github.com/rajithraghunath/roomtag/pkg/store"
)

// maxBodyBytes bounds a tag-run request body.
const maxBodyBytes = 1 << 20

// Config holds the server's collaborators.
type Config struct {
	Backend store.Backend
	Locker  runlock.Locker
	History history.Store
	Logger  *log.Logger
}

// Server handles HTTP requests against one store.
type Server struct {
	backend store.Backend
	locker  runlock.Locker
	history history.Store
	runner  *placement.Runner
	logger  *log.Logger
}

// New creates a server. Nil collaborators get in-process defaults.
func New(cfg Config) *Server {
	if cfg.Locker == nil {
		cfg.Locker = runlock.NewLocalLocker(0)
	}
	if cfg.History == nil {
		cfg.History = history.NullStore{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{
		backend: cfg.Backend,
		locker:  cfg.Locker,
		history: cfg.History,
		runner:  placement.NewRunner(cfg.Logger),
		logger:  cfg.Logger,
	}
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/documents", func(r chi.Router) {
		r.Get("/", s.handleListDocuments)
		r.Post("/{doc}/tag-runs", s.handleTagRun)
		r.Get("/{doc}/tag-runs/latest", s.handleLatest)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr, "store", s.backend.Locator())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.backend.Documents(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []model.DocumentID{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": ids})
}

func (s *Server) handleTagRun(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "doc")

	var opts placement.Options
	if r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, rterrors.Wrap(rterrors.ErrCodeInvalidInput, err, "decode request"))
			return
		}
	}
	if err := opts.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	var report *placement.Report
	err := runlock.WithLock(r.Context(), s.locker, doc, func(ctx context.Context) error {
		m, err := s.backend.Model(ctx, model.DocumentID(doc))
		if err != nil {
			return err
		}
		opts.Logger = s.logger.With("request_id", middleware.GetReqID(ctx))
		report, err = s.runner.PlaceAll(ctx, m, opts)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !report.DryRun {
		if err := s.history.Save(r.Context(), s.backend.Locator(), doc, report); err != nil {
			s.logger.Warn("save history", "document", doc, "err", err)
		}
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "doc")
	e, ok, err := s.history.Latest(r.Context(), s.backend.Locator(), doc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		s.writeError(w, rterrors.New(rterrors.ErrCodeNotFound, "no run recorded for document %q", doc))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    rterrors.Code `json:"code"`
	Message string        `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code rterrors.Code) int {
	switch code {
	case rterrors.ErrCodeNoTagStyle, rterrors.ErrCodeInvalidFilter:
		return http.StatusUnprocessableEntity
	case rterrors.ErrCodeDocumentNotFound, rterrors.ErrCodeNotFound:
		return http.StatusNotFound
	case rterrors.ErrCodeLocked:
		return http.StatusConflict
	case rterrors.ErrCodeInvalidInput, rterrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := rterrors.GetCode(err)
	if code == "" {
		code = rterrors.ErrCodeInternal
	}
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: rterrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logRequests logs one line per request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
