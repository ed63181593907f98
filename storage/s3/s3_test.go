package s3

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/kbukum/flowview/storage"
)

// fakeS3 serves the path-style object routes the backend uses.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/graphs/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			if r.Method == http.MethodGet {
				_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write(data)
		}
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) object(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	return data, ok
}

func newTestStorage(t *testing.T) (*Storage, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewStorage(context.Background(), &Config{
		Bucket:    "graphs",
		Region:    DefaultRegion,
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "test",
	})
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	return s, fake
}

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, fake := newTestStorage(t)

	if _, err := s.Load(ctx, "graphData_1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ok, err := s.Exists(ctx, "graphData_1"); err != nil || ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}

	payload := []byte(`{"nodes":[],"edges":[]}`)
	if err := s.Save(ctx, "graphData_1", payload); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, _ := fake.object("graphData_1"); string(got) != string(payload) {
		t.Fatalf("stored object = %q", got)
	}

	data, err := s.Load(ctx, "graphData_1")
	if err != nil || string(data) != string(payload) {
		t.Fatalf("Load = %q, %v", data, err)
	}
	if ok, err := s.Exists(ctx, "graphData_1"); err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if err := s.Delete(ctx, "graphData_1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := fake.object("graphData_1"); ok {
		t.Error("expected object to be deleted")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Bucket: "b", Region: "eu-west-1"}, false},
		{"missing bucket", Config{Region: "eu-west-1"}, true},
		{"half credentials", Config{Bucket: "b", Region: "eu-west-1", AccessKey: "k"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Describe(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"region", Config{Bucket: "graphs", Region: "eu-west-1"}, "bucket=graphs region=eu-west-1"},
		{"endpoint", Config{Bucket: "graphs", Endpoint: "http://minio:9000"}, "bucket=graphs endpoint=http://minio:9000"},
		{"masked key", Config{Bucket: "graphs", Region: "eu-west-1", AccessKey: "AKIAEXAMPLE", SecretKey: "s"}, "bucket=graphs region=eu-west-1 key=AKIA***"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Describe(); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
