package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/flowview/component"
	"github.com/kbukum/flowview/logger"
)

const importedGraph = `{
  "nodes": [
    {"id": "start", "position": {"x": 0, "y": 0}, "data": {"nodeType": "start", "label": "Start"}},
    {"id": "review", "position": {"x": 200, "y": 0}, "data": {"nodeType": "user", "label": "Review"}},
    {"id": "end", "position": {"x": 400, "y": 0}, "data": {"nodeType": "end", "label": "End"}}
  ],
  "edges": [
    {"id": "e1", "source": "start", "target": "review"},
    {"id": "e2", "source": "review", "target": "end"}
  ]
}`

func newEngine(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/process/status/p-1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"activeNodes":["review"],"completedNodes":["start"],"pendingUserTasks":[{"taskId":"t-1","nodeId":"review","taskName":"Review"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type viewBody struct {
	Data struct {
		InstanceID string         `json:"instanceId"`
		Mode       string         `json:"mode"`
		Nodes      []any          `json:"nodes"`
		Counts     map[string]int `json:"counts"`
	} `json:"data"`
}

func TestBuildServesImportedGraph(t *testing.T) {
	eng := newEngine(t)
	cfg := &Config{}
	cfg.Engine.BaseURL = eng.URL
	cfg.Poller.Interval = 100 * time.Millisecond
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	svc, err := Build(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer svc.Close()

	ctx := context.Background()
	components := svc.Components(false)
	if len(components) != 3 {
		t.Fatalf("components = %d, want 3", len(components))
	}
	registry := component.NewRegistry()
	for _, c := range components {
		if err := registry.Register(c); err != nil {
			t.Fatalf("register %s: %v", c.Name(), err)
		}
	}
	if err := registry.StartAll(ctx); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	defer registry.StopAll(ctx)

	if err := svc.Source.ImportJSON(ctx, "p-1", []byte(importedGraph)); err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	svc.RegisterRoutes(cfg.Name, registry.HealthAll)

	var body viewBody
	deadline := time.Now().Add(3 * time.Second)
	for {
		rec := httptest.NewRecorder()
		svc.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/executions/p-1", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET status = %d: %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Data.Counts["completed"] == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if body.Data.InstanceID != "p-1" || body.Data.Mode != "form" || len(body.Data.Nodes) != 3 {
		t.Errorf("view = %+v", body.Data)
	}
	if body.Data.Counts["completed"] != 1 || body.Data.Counts["active"] != 1 || body.Data.Counts["pending"] != 1 {
		t.Errorf("counts = %v", body.Data.Counts)
	}

	select {
	case id := <-svc.Updates():
		if id != "p-1" {
			t.Errorf("update for %q, want p-1", id)
		}
	case <-time.After(2 * time.Second):
		t.Error("no page update delivered")
	}

	rec := httptest.NewRecorder()
	svc.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestComponentsOrder(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	svc, err := Build(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer svc.Close()

	var names []string
	for _, c := range svc.Components(true) {
		names = append(names, c.Name())
	}
	want := "observability,storage,executions,http-server"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("components = %s, want %s", got, want)
	}
}
