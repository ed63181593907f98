package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/flowview/component"
	"github.com/kbukum/flowview/logger"
	"github.com/kbukum/flowview/server/middleware"
)

func newTestServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()
	cfg := Config{Host: "127.0.0.1"}
	if mutate != nil {
		mutate(&cfg)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return New(cfg, logger.Nop())
}

func TestConfig(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.MaxBodySize != "10MB" {
		t.Errorf("MaxBodySize = %q", cfg.MaxBodySize)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"port out of range", Config{Port: 70000}},
		{"negative timeout", Config{Port: 1, ReadTimeout: -1}},
		{"negative rate limit", Config{Port: 1, RateLimit: -5}},
		{"unreadable body size", Config{Port: 1, MaxBodySize: "ten megs"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestServer_HandlerAppliesStack(t *testing.T) {
	s := newTestServer(t, nil)
	s.RegisterDefaultEndpoints("flowview", func(context.Context) []component.Health {
		return []component.Health{{Name: "executions", Status: component.StatusHealthy}}
	})
	s.GinEngine().GET("/boom", func(*gin.Context) { panic("boom") })

	tests := []struct {
		path     string
		wantCode int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/alive", http.StatusOK},
		{"/info", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/boom", http.StatusInternalServerError},
		{"/missing", http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))
			if rr.Code != tc.wantCode {
				t.Errorf("code = %d, want %d", rr.Code, tc.wantCode)
			}
			if rr.Header().Get(middleware.RequestIDHeader) == "" {
				t.Error("request id header missing")
			}
		})
	}
}

func TestServer_Throttle(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.RateLimit = 1 })
	s.GinEngine().POST("/click", s.Throttle(), func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	s.Handler().ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/click", http.NoBody))
	second := httptest.NewRecorder()
	s.Handler().ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/click", http.NoBody))

	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Fatalf("codes = %d, %d; want 200, 429", first.Code, second.Code)
	}

	open := newTestServer(t, nil)
	open.GinEngine().POST("/click", open.Throttle(), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		open.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/click", http.NoBody))
		if rr.Code != http.StatusOK {
			t.Fatalf("unthrottled request %d: code %d", i, rr.Code)
		}
	}
}

func TestServer_StartStop(t *testing.T) {
	s := newTestServer(t, nil)
	s.httpServer.Addr = "127.0.0.1:0"
	s.RegisterDefaultEndpoints("flowview", nil)

	sc := NewComponent(s)
	if err := sc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Get("http://" + s.Addr() + "/alive")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("alive = %d", resp.StatusCode)
	}
	if err := sc.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestComponent_Routes(t *testing.T) {
	s := newTestServer(t, nil)
	s.RegisterDefaultEndpoints("flowview", nil)
	s.GinEngine().POST("/api/executions", func(c *gin.Context) {})
	s.GinEngine().GET("/api/executions/:id", func(c *gin.Context) {})

	routes := NewComponent(s).Routes()
	if len(routes) != 7 {
		t.Fatalf("got %d routes", len(routes))
	}
	if routes[0].Path != "/api/executions" || routes[0].Method != "POST" {
		t.Errorf("first route = %+v, want API routes first", routes[0])
	}
	if !systemPaths[routes[len(routes)-1].Path] {
		t.Errorf("last route = %+v, want a system route", routes[len(routes)-1])
	}

	desc := NewComponent(s).Describe()
	if desc.Port != DefaultPort {
		t.Errorf("Describe port = %d", desc.Port)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"github.com/kbukum/flowview/view.(*Handler).Click-fm", "view.Click"},
		{"github.com/kbukum/flowview/server/endpoint.Liveness.func1", "endpoint.func1"},
		{"main.handler", "main.handler"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := formatHandlerName(tc.in); got != tc.want {
				t.Errorf("formatHandlerName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
