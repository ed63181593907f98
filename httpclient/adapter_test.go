package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/flowview/resilience"
)

func TestAdapter_GetDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/process/status/p1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string][]string{"activeNodes": {"n1"}})
	}))
	defer srv.Close()

	a, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp, err := Get[struct {
		ActiveNodes []string `json:"activeNodes"`
	}](a, context.Background(), "/api/process/status/p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(resp.Data.ActiveNodes) != 1 || resp.Data.ActiveNodes[0] != "n1" {
		t.Errorf("unexpected data %+v", resp.Data)
	}
}

func TestAdapter_PostSendsBodyAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if q := r.URL.Query().Get("processInstanceId"); q != "p1" {
			t.Errorf("expected processInstanceId=p1, got %q", q)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"approved":"yes"}` {
			t.Errorf("unexpected body %s", body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a, _ := New(Config{BaseURL: srv.URL})
	resp, err := Post[struct{}](a, context.Background(), "/complete/n1",
		map[string]string{"approved": "yes"}, WithQueryParam("processInstanceId", "p1"))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAdapter_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		code      ErrorCode
		retryable bool
	}{
		{"server error", http.StatusInternalServerError, "", ErrCodeServer, true},
		{"not found", http.StatusNotFound, "", ErrCodeNotFound, false},
		{"bad request", http.StatusBadRequest, "", ErrCodeValidation, false},
		{"rate limited", http.StatusTooManyRequests, "", ErrCodeRateLimit, true},
		{"undecodable", http.StatusOK, "<html>", ErrCodeDecode, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			a, _ := New(Config{BaseURL: srv.URL})
			_, err := Get[map[string]any](a, context.Background(), "/x")
			e, ok := AsError(err)
			if !ok {
				t.Fatalf("expected *Error, got %v", err)
			}
			if e.Code != tt.code || e.Retryable != tt.retryable {
				t.Errorf("got code=%s retryable=%v, want %s/%v", e.Code, e.Retryable, tt.code, tt.retryable)
			}
		})
	}
}

func TestAdapter_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	a, _ := New(Config{BaseURL: url, Timeout: time.Second})
	_, err := a.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	e, ok := AsError(err)
	if !ok || e.Code != ErrCodeConnection || e.StatusCode != 0 {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestAdapter_RetryAndBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	retry := DefaultRetryConfig()
	retry.InitialBackoff = time.Millisecond
	retry.MaxAttempts = 2
	cb := DefaultCircuitBreakerConfig("engine")
	cb.MaxFailures = 2

	a, _ := New(Config{BaseURL: srv.URL, Retry: retry, CircuitBreaker: cb})
	_, err := a.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsRetryable(err) {
		t.Fatalf("expected retryable server error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
	if a.BreakerState() != resilience.StateOpen {
		t.Fatalf("expected breaker open, got %s", a.BreakerState())
	}

	_, err = a.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	e, ok := AsError(err)
	if !ok || e.Code != ErrCodeCircuitOpen {
		t.Fatalf("expected circuit open error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("open circuit must not reach the server, calls=%d", calls.Load())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"valid base url", Config{BaseURL: "http://localhost:8080"}, false},
		{"relative base url", Config{BaseURL: "localhost"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ApplyDefaults()
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
