package web

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ritzau/javabuild/pkg/build"
	"github.com/ritzau/javabuild/pkg/command"
	"github.com/ritzau/javabuild/pkg/cycles"
	"github.com/ritzau/javabuild/pkg/history"
	"github.com/ritzau/javabuild/pkg/model"
	"github.com/ritzau/javabuild/pkg/planner"
	"github.com/ritzau/javabuild/pkg/pubsub"
)

type fakeInspector struct {
	plan *planner.Plan
	err  error
}

func (f *fakeInspector) Plan(ctx context.Context) (*planner.Plan, error) {
	return f.plan, f.err
}

func (f *fakeInspector) CommandFor(ctx context.Context, kind build.Kind) ([]command.BuildCommand, error) {
	if f.err != nil {
		return nil, f.err
	}
	if kind == build.KindRun {
		return []command.BuildCommand{""}, nil
	}
	return []command.BuildCommand{command.BuildCommand("javac " + string(kind))}, nil
}

func incrementalPlan() *planner.Plan {
	return &planner.Plan{
		RunID:      "run-1",
		Mode:       model.ModeIncremental,
		SourceRoot: "src",
		OutputRoot: "bin",
		Stale:      model.NewFileSet("src/pkg/A.java"),
		Expanded:   model.NewFileSet("src/pkg/A.java", "src/pkg/B.java"),
		Cycles:     []cycles.ImportCycle{{Files: []string{"src/a/X.java", "src/a/Y.java"}}},
	}
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandlePlan(t *testing.T) {
	s := NewServer(&fakeInspector{plan: incrementalPlan()}, nil)
	rec := get(t, s, "/api/plan")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	var body struct {
		Mode     string   `json:"mode"`
		Stale    []string `json:"stale"`
		Expanded []string `json:"expanded"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Mode != "incremental" || len(body.Stale) != 1 || len(body.Expanded) != 2 {
		t.Errorf("body = %+v", body)
	}
	if body.Expanded[0] != "src/pkg/A.java" {
		t.Errorf("expanded not sorted: %v", body.Expanded)
	}
}

func TestHandlePlanError(t *testing.T) {
	s := NewServer(&fakeInspector{err: context.DeadlineExceeded}, nil)
	if rec := get(t, s, "/api/plan"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleGraphFromScratch(t *testing.T) {
	s := NewServer(&fakeInspector{plan: &planner.Plan{Mode: model.ModeFromScratch}}, nil)
	rec := get(t, s, "/api/graph")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var g model.Graph
	if err := json.NewDecoder(rec.Body).Decode(&g); err != nil {
		t.Fatal(err)
	}
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Errorf("graph = %+v, want empty", g)
	}
}

func writeSource(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHandleGraphLens(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	out := filepath.Join(root, "bin")
	writeSource(t, filepath.Join(src, "p", "A.java"), "package p;\nclass A {}\n")
	writeSource(t, filepath.Join(src, "p", "B.java"), "package p;\nimport p.A;\nclass B {}\n")
	writeSource(t, filepath.Join(src, "q", "C.java"), "package q;\nclass C {}\n")
	writeSource(t, filepath.Join(out, "Keep.class"), "")

	plan, err := planner.New().Plan(context.Background(), planner.Request{
		SourceRoot: src,
		OutputRoot: out,
		Platform:   command.Unix(),
	})
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(&fakeInspector{plan: plan}, nil)

	tests := []struct {
		query      string
		wantStatus int
		wantNodes  int
		wantEdges  int
	}{
		{"", http.StatusOK, 3, 1},
		{"?focus=" + filepath.Join(src, "p", "A.java"), http.StatusOK, 2, 1},
		{"?focus=q", http.StatusOK, 1, 0},
		{"?focus=p&depth=0", http.StatusOK, 2, 1},
		{"?depth=x", http.StatusBadRequest, 0, 0},
		{"?stale=maybe", http.StatusBadRequest, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := get(t, s, "/api/graph"+tt.query)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var g model.Graph
			if err := json.NewDecoder(rec.Body).Decode(&g); err != nil {
				t.Fatal(err)
			}
			if len(g.Nodes) != tt.wantNodes || len(g.Edges) != tt.wantEdges {
				t.Errorf("got %d nodes, %d edges; want %d, %d",
					len(g.Nodes), len(g.Edges), tt.wantNodes, tt.wantEdges)
			}
		})
	}
}

func TestHandleCycles(t *testing.T) {
	s := NewServer(&fakeInspector{plan: incrementalPlan()}, nil)
	rec := get(t, s, "/api/cycles")
	var got []cycles.ImportCycle
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || len(got[0].Files) != 2 {
		t.Errorf("cycles = %+v", got)
	}

	s = NewServer(&fakeInspector{plan: &planner.Plan{Mode: model.ModeFromScratch}}, nil)
	rec = get(t, s, "/api/cycles")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty cycles body = %q, want []", rec.Body.String())
	}
}

func TestHandleCommand(t *testing.T) {
	s := NewServer(&fakeInspector{plan: incrementalPlan()}, nil)

	tests := []struct {
		path         string
		wantStatus   int
		wantRunnable bool
	}{
		{"/api/command/compile", http.StatusOK, true},
		{"/api/command/jar", http.StatusOK, true},
		{"/api/command/run", http.StatusOK, false},
		{"/api/command/deploy", http.StatusNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, s, tt.path)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp CommandResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Runnable != tt.wantRunnable {
				t.Errorf("runnable = %v, want %v (%v)", resp.Runnable, tt.wantRunnable, resp.Commands)
			}
		})
	}
}

func TestHandleCommandError(t *testing.T) {
	s := NewServer(&fakeInspector{err: errors.New("boom")}, nil)
	if rec := get(t, s, "/api/command/compile"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

type fakeHistory struct {
	entries   []history.Entry
	lastLimit int
}

func (f *fakeHistory) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	f.lastLimit = limit
	if limit > 0 && limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func TestHandleHistory(t *testing.T) {
	h := &fakeHistory{entries: []history.Entry{
		{RunID: "r2", Status: "failed"},
		{RunID: "r1", Status: "succeeded"},
	}}
	s := NewServer(&fakeInspector{}, nil).WithHistory(h)

	rec := get(t, s, "/api/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if h.lastLimit != defaultHistoryLimit {
		t.Errorf("limit = %d, want default %d", h.lastLimit, defaultHistoryLimit)
	}
	var got []history.Entry
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].RunID != "r2" {
		t.Errorf("entries = %+v", got)
	}

	rec = get(t, s, "/api/history?limit=1")
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("limit=1 returned %d entries", len(got))
	}

	if rec := get(t, s, "/api/history?limit=many"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}
}

func TestHistoryNotServedByDefault(t *testing.T) {
	s := NewServer(&fakeInspector{}, nil)
	if rec := get(t, s, "/api/history"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	s := NewServer(&fakeInspector{}, nil)
	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("metrics output missing runtime collectors")
	}
}

func TestSubscribeWithoutPublisher(t *testing.T) {
	s := NewServer(&fakeInspector{}, nil)
	if rec := get(t, s, "/api/subscribe/plan"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSubscribeStreamsEvents(t *testing.T) {
	pub := pubsub.NewSSEPublisher()
	defer pub.Close()
	pub.ConfigureTopic(pubsub.TopicBuildStatus, pubsub.TopicConfig{BufferSize: 1})
	if err := pub.Publish(pubsub.TopicBuildStatus, string(pubsub.StateSucceeded), pubsub.BuildStatus{State: pubsub.StateSucceeded}); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(NewServer(&fakeInspector{}, pub).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/subscribe/build_status", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, "event: ") {
			if line != "event: succeeded" {
				t.Errorf("event line = %q", line)
			}
			return
		}
	}
	t.Fatalf("stream ended without event: %v", scanner.Err())
}

func TestSubscribeUnknownTopic(t *testing.T) {
	pub := pubsub.NewSSEPublisher()
	defer pub.Close()
	s := NewServer(&fakeInspector{}, pub)
	if rec := get(t, s, "/api/subscribe/secrets"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
