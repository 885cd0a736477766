package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ritzau/javabuild/pkg/build"
	"github.com/ritzau/javabuild/pkg/command"
	"github.com/ritzau/javabuild/pkg/cycles"
	"github.com/ritzau/javabuild/pkg/history"
	"github.com/ritzau/javabuild/pkg/lens"
	"github.com/ritzau/javabuild/pkg/logging"
	"github.com/ritzau/javabuild/pkg/model"
	"github.com/ritzau/javabuild/pkg/planner"
	"github.com/ritzau/javabuild/pkg/pubsub"
)

// Inspector computes the data served by the API. Every request plans afresh.
type Inspector interface {
	Plan(ctx context.Context) (*planner.Plan, error)
	CommandFor(ctx context.Context, kind build.Kind) ([]command.BuildCommand, error)
}

// HistoryReader lists recorded builds, newest first
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// defaultHistoryLimit is the number of builds /api/history returns by default
const defaultHistoryLimit = 20

// CommandResponse is the body of /api/command/{kind}
type CommandResponse struct {
	Kind     build.Kind `json:"kind"`
	Commands []string   `json:"commands"`
	Runnable bool       `json:"runnable"`
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	api       *mux.Router
	inspector Inspector
	publisher pubsub.Publisher
	history   HistoryReader
}

// NewServer creates a new web server. publisher may be nil, in which case
// the subscription endpoint is not registered.
func NewServer(inspector Inspector, publisher pubsub.Publisher) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		inspector: inspector,
		publisher: publisher,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	s.api = api
	api.HandleFunc("/plan", s.handlePlan).Methods("GET")
	api.HandleFunc("/graph", s.handleGraph).Methods("GET")
	api.HandleFunc("/cycles", s.handleCycles).Methods("GET")
	api.HandleFunc("/command/{kind}", s.handleCommand).Methods("GET")
	if s.publisher != nil {
		api.HandleFunc("/subscribe/{topic}", s.handleSubscribe).Methods("GET")
	}
}

// WithHistory serves the build history from h under /api/history
func (s *Server) WithHistory(h HistoryReader) *Server {
	s.history = h
	s.api.HandleFunc("/history", s.handleHistory).Methods("GET")
	return s
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.plan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.plan(w, r)
	if !ok {
		return
	}
	l, err := lensFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if plan.Index == nil {
		// From scratch plans do not scan imports
		writeJSON(w, http.StatusOK, model.NewGraph())
		return
	}
	writeJSON(w, http.StatusOK, lens.Render(plan.Index.Graph.View(plan.Stale), l))
}

// lensFromQuery reads ?focus=a,b&depth=N&stale=true
func lensFromQuery(r *http.Request) (lens.Lens, error) {
	l := lens.Full
	q := r.URL.Query()
	for _, f := range q["focus"] {
		for _, id := range strings.Split(f, ",") {
			if id = strings.TrimSpace(id); id != "" {
				l.Focus = append(l.Focus, id)
			}
		}
	}
	if d := q.Get("depth"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			return l, fmt.Errorf("invalid depth %q", d)
		}
		l.MaxDistance = n
	}
	if st := q.Get("stale"); st != "" {
		b, err := strconv.ParseBool(st)
		if err != nil {
			return l, fmt.Errorf("invalid stale %q", st)
		}
		l.StaleOnly = b
	}
	return l, nil
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.plan(w, r)
	if !ok {
		return
	}
	found := plan.Cycles
	if found == nil {
		found = []cycles.ImportCycle{}
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	kind := build.Kind(mux.Vars(r)["kind"])
	known := false
	for _, k := range build.Kinds {
		known = known || k == kind
	}
	if !known {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown command kind %q", kind))
		return
	}

	cmds, err := s.inspector.CommandFor(r.Context(), kind)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	resp := CommandResponse{Kind: kind, Commands: []string{}}
	for _, c := range cmds {
		if c.Runnable() {
			resp.Commands = append(resp.Commands, string(c))
		}
	}
	resp.Runnable = len(resp.Commands) > 0
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", l))
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if topic != pubsub.TopicBuildStatus && topic != pubsub.TopicPlan && topic != pubsub.TopicGraph {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown topic %q", topic))
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Initial comment establishes the stream before the first event
	fmt.Fprintf(w, ": connected\n\n")
	flush(w)

	for event := range sub.Events() {
		if err := pubsub.WriteSSE(w, event); err != nil {
			logging.DebugContext(r.Context(), "subscriber gone", "topic", topic, "error", err)
			return
		}
		flush(w)
	}
}

// plan computes a plan or writes the error response
func (s *Server) plan(w http.ResponseWriter, r *http.Request) (*planner.Plan, bool) {
	plan, err := s.inspector.Plan(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return nil, false
	}
	return plan, true
}

// Start serves on the given port until ctx is cancelled
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("web server shutdown", "error", err)
		}
	}()

	logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
