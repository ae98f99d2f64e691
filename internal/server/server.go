// Package server exposes explanations, the command catalog and the
// explanation history over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/scbrown/cheeky/internal/analyze"
	"github.com/scbrown/cheeky/internal/ctxlog"
	"github.com/scbrown/cheeky/internal/explain"
	"github.com/scbrown/cheeky/internal/model"
	"github.com/scbrown/cheeky/internal/store"
)

// Options configures a Server.
type Options struct {
	// Store backs the history endpoints. When nil they answer 503.
	Store store.Store
	// Record stores every explain request in Store.
	Record bool
	// Logger receives request logs; nil means slog.Default().
	Logger *slog.Logger
}

// Server answers explain requests with an explain.Explainer.
type Server struct {
	explainer *explain.Explainer
	store     store.Store
	record    bool
	logger    *slog.Logger
	mux       *http.ServeMux
	srv       *http.Server
}

// New creates a Server resolving against x's catalog.
func New(x *explain.Explainer, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		explainer: x,
		store:     opts.Store,
		record:    opts.Record && opts.Store != nil,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	srv.routes()
	srv.srv = &http.Server{
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/v1/explain", s.handleExplain)
	s.mux.HandleFunc("GET /api/v1/commands", s.handleCommands)
	s.mux.HandleFunc("GET /api/v1/commands/{name}", s.handleCommand)
	s.mux.HandleFunc("GET /api/v1/suggest", s.handleSuggest)
	s.mux.HandleFunc("POST /api/v1/history", s.handleRecordHistory)
	s.mux.HandleFunc("GET /api/v1/history", s.handleListHistory)
	s.mux.HandleFunc("DELETE /api/v1/history", s.handlePruneHistory)
	s.mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on the given listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

// Handler returns the HTTP handler, including request logging, for use
// with httptest.Server or custom listeners.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Shutdown gracefully shuts down the server. It is safe to call from
// another goroutine while Serve is running, or before it starts.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests puts the server logger into each request context and logs
// one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := ctxlog.WithLogger(r.Context(), s.logger)
		next.ServeHTTP(rec, r.WithContext(ctx))
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type explainRequest struct {
	Command string `json:"command"`
	Chain   bool   `json:"chain,omitempty"`
}

// explainResponse is an explanation plus closest-flag hints for the flags
// the catalog does not declare.
type explainResponse struct {
	*model.Explanation
	Hints map[string]string `json:"hints,omitempty"`
}

type notFoundResponse struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type stepResponse struct {
	Input       string             `json:"input"`
	Explanation *model.Explanation `json:"explanation,omitempty"`
	Error       string             `json:"error,omitempty"`
	Suggestions []string           `json:"suggestions,omitempty"`
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if req.Command == "" {
		writeErr(w, http.StatusBadRequest, "command is required")
		return
	}
	if req.Chain {
		s.explainChain(w, r, req.Command)
		return
	}

	e, err := s.explainer.Explain(req.Command)
	s.remember(r.Context(), req.Command, e)
	if err != nil {
		if !explain.IsNotFound(err) {
			writeErr(w, http.StatusInternalServerError, "explaining: %v", err)
			return
		}
		ctxlog.FromContext(r.Context()).Debug("command not found", "input", req.Command, "err", err)
		writeJSON(w, http.StatusNotFound, s.notFound(req.Command))
		return
	}
	writeJSON(w, http.StatusOK, explainResponse{
		Explanation: e,
		Hints:       explain.FlagHints(e, s.explainer.Catalog()),
	})
}

func (s *Server) explainChain(w http.ResponseWriter, r *http.Request, line string) {
	steps := s.explainer.ExplainChain(line)
	out := make([]stepResponse, 0, len(steps))
	for _, st := range steps {
		s.remember(r.Context(), st.Input, st.Explanation)
		sr := stepResponse{Input: st.Input, Explanation: st.Explanation}
		if st.Err != nil {
			nf := s.notFound(st.Input)
			sr.Error, sr.Suggestions = nf.Error, nf.Suggestions
		}
		out = append(out, sr)
	}
	writeJSON(w, http.StatusOK, map[string]any{"steps": out})
}

func (s *Server) notFound(raw string) notFoundResponse {
	cat := s.explainer.Catalog()
	resp := notFoundResponse{Error: explain.NotFoundMessage(cat.Prefix())}
	for _, sg := range explain.CommandHints(raw, cat) {
		resp.Suggestions = append(resp.Suggestions, sg.Name)
	}
	return resp
}

// remember records an explain request when recording is enabled. Failures
// are logged, never returned to the client.
func (s *Server) remember(ctx context.Context, raw string, e *model.Explanation) {
	if !s.record {
		return
	}
	if err := s.store.Record(ctx, explain.Record(raw, "http", e)); err != nil {
		ctxlog.FromContext(ctx).Warn("recording history", "err", err)
	}
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.explainer.Catalog().Commands())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	cat := s.explainer.Catalog()
	name := r.PathValue("name")
	cmd, ok := cat.Find(name)
	if !ok {
		resp := notFoundResponse{Error: fmt.Sprintf("unknown command %q", name)}
		for _, sg := range analyze.Suggest(name, cat.Names()) {
			resp.Suggestions = append(resp.Suggestions, sg.Name)
		}
		writeJSON(w, http.StatusNotFound, resp)
		return
	}
	writeJSON(w, http.StatusOK, cmd)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeErr(w, http.StatusBadRequest, "name query parameter is required")
		return
	}
	top, err := parseInt(r, "top")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "%v", err)
		return
	}
	if top <= 0 {
		top = analyze.DefaultTopN
	}
	sugs := analyze.SuggestN(name, s.explainer.Catalog().Names(), top, analyze.DefaultThreshold)
	if sugs == nil {
		sugs = []analyze.Suggestion{}
	}
	writeJSON(w, http.StatusOK, sugs)
}

// errNoStore is reported by history endpoints when the server runs
// without a store.
var errNoStore = errors.New("history is disabled on this server")

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeErr(w, http.StatusServiceUnavailable, "%v", errNoStore)
		return false
	}
	return true
}

func (s *Server) handleRecordHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var e model.HistoryEntry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if e.Input == "" {
		writeErr(w, http.StatusBadRequest, "input is required")
		return
	}
	if err := s.store.Record(r.Context(), e); err != nil {
		writeErr(w, http.StatusInternalServerError, "recording history: %v", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	opts, err := parseListOpts(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "%v", err)
		return
	}
	entries, err := s.store.List(r.Context(), opts)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "listing history: %v", err)
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handlePruneHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	before, err := parseBefore(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "%v", err)
		return
	}
	n, err := s.store.Prune(r.Context(), before)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "pruning history: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	st, err := s.store.Stats(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "getting stats: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"commands": s.explainer.Catalog().Len(),
		"history":  s.store != nil,
	})
}

// writeJSON encodes v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// writeErr writes a JSON error response.
func writeErr(w http.ResponseWriter, status int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, status, map[string]string{"error": msg})
}
