package view

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/flowview/errors"
	"github.com/kbukum/flowview/execution"
	"github.com/kbukum/flowview/graph"
	"github.com/kbukum/flowview/graphsource"
	"github.com/kbukum/flowview/logger"
	"github.com/kbukum/flowview/poller"
	"github.com/kbukum/flowview/storage"
)

type fixture struct {
	router   *gin.Engine
	engine   *fakeEngine
	store    *storage.Memory
	registry *execution.Registry
}

func newFixture(t *testing.T, mode string) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemory()
	data, err := graph.Encode(testGraph())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(context.Background(), graphsource.Key("p-1"), data); err != nil {
		t.Fatal(err)
	}

	eng := newFakeEngine()
	reg := execution.NewRegistry(
		graphsource.New(store, graphsource.WithLogger(logger.Nop())),
		eng,
		execution.RegistryConfig{
			Interaction: execution.Config{Mode: mode},
			Poller:      poller.Config{Interval: time.Hour},
		},
		execution.WithLogger(logger.Nop()),
		execution.WithPollerOptions(poller.WithLogger(logger.Nop())),
	)
	t.Cleanup(func() { _ = reg.Stop(context.Background()) })

	r := gin.New()
	NewHandler(reg, DefaultOptions, logger.Nop()).Register(r, func(c *gin.Context) { c.Next() })
	return &fixture{router: r, engine: eng, store: store, registry: reg}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f *fixture) postForm(t *testing.T, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

// waitLoaded waits for the first poll so clicks see the active node.
func (f *fixture) waitLoaded(t *testing.T, id string) *execution.Page {
	t.Helper()
	p, err := f.registry.Mount(context.Background(), id, nil)
	if err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for p.State().Snapshot == nil {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for first status")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return p
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", rr.Body.String(), err)
	}
	return env.Data
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) apperrors.ErrorCode {
	t.Helper()
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error %s: %v", rr.Body.String(), err)
	}
	return body.Error.Code
}

func TestAPI_GetMountsFromStore(t *testing.T) {
	f := newFixture(t, execution.ModeForm)
	f.waitLoaded(t, "p-1")

	rr := f.do(t, http.MethodGet, "/api/executions/p-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rr.Code, rr.Body.String())
	}
	m := decode[Model](t, rr)
	if m.InstanceID != "p-1" || len(m.Nodes) != 4 || m.Seq == 0 {
		t.Errorf("model = %+v", m)
	}
	if m.Flags.Draggable || !m.Flags.FitView {
		t.Errorf("flags = %+v", m.Flags)
	}
}

func TestAPI_Launch(t *testing.T) {
	f := newFixture(t, execution.ModeForm)
	body, _ := graph.Encode(testGraph())

	rr := f.do(t, http.MethodPost, "/api/executions", string(body))
	if rr.Code != http.StatusCreated {
		t.Fatalf("code = %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[LaunchResponse](t, rr)
	if resp.Execution.InstanceID != "p-new" || resp.View.InstanceID != "p-new" {
		t.Errorf("launch response = %+v", resp)
	}
	if ok, _ := f.store.Exists(context.Background(), graphsource.Key("p-new")); !ok {
		t.Error("launched graph not stored")
	}

	tests := []struct {
		name     string
		body     string
		wantCode apperrors.ErrorCode
	}{
		{"empty body", "", apperrors.ErrCodeMissingField},
		{"not json", "{nodes", apperrors.ErrCodeInvalidInput},
		{"array", "[]", apperrors.ErrCodeInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, "/api/executions", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("code = %d", rr.Code)
			}
			if got := errorCode(t, rr); got != tc.wantCode {
				t.Errorf("error code = %q, want %q", got, tc.wantCode)
			}
		})
	}
}

func TestAPI_MountWithNavigationState(t *testing.T) {
	f := newFixture(t, execution.ModeForm)
	nav := `{"nodes":[{"id":"only","data":{"nodeType":"user","label":"Only"}}],"edges":[]}`

	rr := f.do(t, http.MethodPut, "/api/executions/p-1", nav)
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rr.Code, rr.Body.String())
	}
	if m := decode[Model](t, rr); len(m.Nodes) != 1 || m.Nodes[0].ID != "only" {
		t.Errorf("navigation graph not shown: %+v", m.Nodes)
	}
}

func TestAPI_FormFlow(t *testing.T) {
	f := newFixture(t, execution.ModeForm)
	f.waitLoaded(t, "p-1")

	rr := f.do(t, http.MethodPost, "/api/executions/p-1/nodes/review/click", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("click code = %d: %s", rr.Code, rr.Body.String())
	}
	click := decode[ClickResponse](t, rr)
	if click.Outcome != execution.OutcomeFormOpened || click.Form == nil {
		t.Fatalf("click = %+v", click.ClickResult)
	}
	if click.View.Selection == nil || click.View.Selection.NodeID != "review" {
		t.Errorf("view selection = %+v", click.View.Selection)
	}

	rr = f.do(t, http.MethodPut, "/api/executions/p-1/form", `{"fields":{"first_name":"Ada"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set fields code = %d: %s", rr.Code, rr.Body.String())
	}
	rr = f.do(t, http.MethodPut, "/api/executions/p-1/form", `{"fields":{"nope":"x"}}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown field code = %d", rr.Code)
	}

	f.engine.fail(apperrors.TransportFailure("complete_node", 500, errors.New("boom")))
	rr = f.do(t, http.MethodPost, "/api/executions/p-1/form/submit", "")
	if rr.Code != http.StatusBadGateway || errorCode(t, rr) != apperrors.ErrCodeTransportFailure {
		t.Fatalf("failed submit = %d %s", rr.Code, rr.Body.String())
	}
	if decode[Model](t, f.do(t, http.MethodGet, "/api/executions/p-1", "")).Form == nil {
		t.Fatal("form closed after failed submit")
	}

	f.engine.fail(nil)
	rr = f.do(t, http.MethodPost, "/api/executions/p-1/form/submit", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("submit code = %d: %s", rr.Code, rr.Body.String())
	}
	m := decode[Model](t, rr)
	if m.Form != nil || m.Selection != nil {
		t.Errorf("form/selection not cleared: %+v %+v", m.Form, m.Selection)
	}
	if got := f.engine.completions(); len(got) != 1 || got[0] != "review" {
		t.Errorf("completions = %v", got)
	}

	rr = f.do(t, http.MethodPost, "/api/executions/p-1/form/submit", "")
	if rr.Code != http.StatusConflict {
		t.Errorf("submit without form = %d", rr.Code)
	}
}

func TestAPI_DirectMode(t *testing.T) {
	f := newFixture(t, execution.ModeDirect)
	f.waitLoaded(t, "p-1")

	rr := f.do(t, http.MethodPost, "/api/executions/p-1/nodes/review/click", "")
	click := decode[ClickResponse](t, rr)
	if click.Outcome != execution.OutcomeCompleted {
		t.Fatalf("outcome = %q", click.Outcome)
	}
	if got := f.engine.completions(); len(got) != 1 || got[0] != "t-1" {
		t.Errorf("completions = %v", got)
	}
}

func TestAPI_Errors(t *testing.T) {
	f := newFixture(t, execution.ModeForm)

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{"unknown node", http.MethodPost, "/api/executions/p-1/nodes/ghost/click", http.StatusNotFound},
		{"unmount missing", http.MethodDelete, "/api/executions/never-mounted", http.StatusNotFound},
		{"fields without form", http.MethodPut, "/api/executions/p-1/form", http.StatusConflict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := ""
			if tc.method == http.MethodPut {
				body = `{"fields":{"first_name":"x"}}`
			}
			if rr := f.do(t, tc.method, tc.path, body); rr.Code != tc.wantCode {
				t.Errorf("code = %d, want %d: %s", rr.Code, tc.wantCode, rr.Body.String())
			}
		})
	}

	if rr := f.do(t, http.MethodDelete, "/api/executions/p-1", ""); rr.Code != http.StatusNoContent {
		t.Errorf("unmount code = %d", rr.Code)
	}
	if rr := f.do(t, http.MethodDelete, "/api/executions/p-1/form", ""); rr.Code != http.StatusNotFound {
		t.Errorf("cancel after unmount = %d, want 404", rr.Code)
	}
}

func TestFormRoutesDoNotMount(t *testing.T) {
	f := newFixture(t, execution.ModeForm)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		html     bool
		wantCode int
	}{
		{"api cancel", http.MethodDelete, "/api/executions/ghost-1/form", "", false, http.StatusNotFound},
		{"api fields", http.MethodPut, "/api/executions/ghost-2/form", `{"fields":{"a":"b"}}`, false, http.StatusNotFound},
		{"api submit", http.MethodPost, "/api/executions/ghost-3/form/submit", "", false, http.StatusNotFound},
		{"html cancel", http.MethodPost, "/executions/ghost-4/form/cancel", "", true, http.StatusSeeOther},
		{"html submit", http.MethodPost, "/executions/ghost-5/form", "", true, http.StatusSeeOther},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var rr *httptest.ResponseRecorder
			if tc.html {
				rr = f.postForm(t, tc.path, nil)
			} else {
				rr = f.do(t, tc.method, tc.path, tc.body)
			}
			if rr.Code != tc.wantCode {
				t.Errorf("code = %d, want %d: %s", rr.Code, tc.wantCode, rr.Body.String())
			}
		})
	}
	if ids := f.registry.IDs(); len(ids) != 0 {
		t.Errorf("form routes mounted pages: %v", ids)
	}
}

func TestHTML_PageFlow(t *testing.T) {
	f := newFixture(t, execution.ModeForm)
	p := f.waitLoaded(t, "p-1")

	rr := f.do(t, http.MethodGet, "/executions/p-1", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("page = %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Body.String(), "Review application") {
		t.Error("page missing node label")
	}

	rr = f.postForm(t, "/executions/p-1/click/review", nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/executions/p-1" {
		t.Fatalf("click redirect = %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if p.Form() == nil {
		t.Fatal("form not opened")
	}

	rr = f.postForm(t, "/executions/p-1/form/cancel", nil)
	if rr.Code != http.StatusSeeOther || p.Form() != nil {
		t.Fatalf("cancel = %d, form = %+v", rr.Code, p.Form())
	}

	f.postForm(t, "/executions/p-1/click/review", nil)
	rr = f.postForm(t, "/executions/p-1/form", url.Values{"first_name": {"Ada"}, "approved": {"yes"}, "ignored": {"x"}})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("submit redirect = %d", rr.Code)
	}
	if p.Form() != nil {
		t.Error("form still open after submit")
	}
	if got := f.engine.completions(); len(got) != 1 || got[0] != "review" {
		t.Errorf("completions = %v", got)
	}
}
