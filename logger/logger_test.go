package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: FormatJSON}, "flowview", buf)
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "invalid-level")
	l.Debug("hidden")
	l.Info("shown")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0]["message"] != "shown" {
		t.Errorf("unexpected message %v", lines[0]["message"])
	}
}

func TestJSONCarriesServiceAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "debug").WithComponent("poller").WithInstance("p-1")
	l.Warn("status fetch failed", Fields(FieldSeq, 3, "ignored"))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	tests := map[string]interface{}{
		FieldService:    "flowview",
		FieldComponent:  "poller",
		FieldInstanceID: "p-1",
		FieldSeq:        float64(3),
		"level":         "warn",
	}
	for k, want := range tests {
		if got[k] != want {
			t.Errorf("%s = %v, want %v", k, got[k], want)
		}
	}
	if _, ok := got["ignored"]; ok {
		t.Error("dangling key should be dropped")
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-9")
	ctx = ContextWithInstance(ctx, "p-2")
	jsonLogger(&buf, "info").WithContext(ctx).Info("hello")

	lines := decodeLines(t, &buf)
	if lines[0][FieldRequestID] != "req-9" || lines[0][FieldInstanceID] != "p-2" {
		t.Errorf("context ids missing: %v", lines[0])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithError(errors.New("boom")).Error("failed")

	lines := decodeLines(t, &buf)
	if lines[0]["error"] != "boom" {
		t.Errorf("expected error field, got %v", lines[0])
	}
}

func TestHelperFields(t *testing.T) {
	f := ErrorFields("status", errors.New("x"))
	if f[FieldOperation] != "status" || f[FieldError] != "x" {
		t.Errorf("ErrorFields = %v", f)
	}
	d := DurationFields("status", 1500*time.Millisecond)
	if d[FieldDuration] != int64(1500) {
		t.Errorf("DurationFields = %v", d)
	}
	m := MergeWithError(nil, errors.New("y"))
	if m[FieldError] != "y" {
		t.Errorf("MergeWithError = %v", m)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"bad level", Config{Level: "loud"}, true},
		{"bad format", Config{Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ApplyDefaults()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGlobalLogger(t *testing.T) {
	prev := globalLogger
	defer SetGlobalLogger(prev)

	var buf bytes.Buffer
	SetGlobalLogger(jsonLogger(&buf, "info"))
	WithComponent("registry").Info("mounted")
	Info("plain")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 || lines[0][FieldComponent] != "registry" {
		t.Errorf("unexpected lines %v", lines)
	}
}
