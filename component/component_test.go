package component

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeComponent struct {
	name     string
	startErr error
	stopErr  error
	log      *[]string
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	*f.log = append(*f.log, "start:"+f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(context.Context) error {
	*f.log = append(*f.log, "stop:"+f.name)
	return f.stopErr
}

func (f *fakeComponent) Health(context.Context) Health {
	return Health{Name: f.name, Status: StatusHealthy}
}

func TestRegistry_OrderedLifecycle(t *testing.T) {
	var log []string
	r := NewRegistry()
	for _, n := range []string{"redis", "executions", "http-server"} {
		if err := r.Register(&fakeComponent{name: n, log: &log}); err != nil {
			t.Fatalf("Register(%s): %v", n, err)
		}
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := "start:redis,start:executions,start:http-server,stop:http-server,stop:executions,stop:redis"
	if got := strings.Join(log, ","); got != want {
		t.Errorf("lifecycle order\n got %s\nwant %s", got, want)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	var log []string
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "a", log: &log})
	if err := r.Register(&fakeComponent{name: "a", log: &log}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestRegistry_StartFailureUnwinds(t *testing.T) {
	var log []string
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "a", log: &log})
	_ = r.Register(&fakeComponent{name: "b", log: &log, startErr: errors.New("boom")})
	_ = r.Register(&fakeComponent{name: "c", log: &log})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
	_ = r.StopAll(context.Background())

	want := "start:a,start:b,stop:a"
	if got := strings.Join(log, ","); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRegistry_StopErrorsAggregate(t *testing.T) {
	var log []string
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "a", log: &log, stopErr: errors.New("stuck")})
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "failed to stop a") {
		t.Fatalf("expected aggregated stop error, got %v", err)
	}
}

func TestRegistry_LookupAndHealth(t *testing.T) {
	var log []string
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "a", log: &log})

	if r.Get("a") == nil || r.Get("missing") != nil {
		t.Error("unexpected Get result")
	}
	h := r.HealthAll(context.Background())
	if len(h) != 1 || h[0].Status != StatusHealthy {
		t.Errorf("unexpected health %v", h)
	}
	if len(r.All()) != 1 {
		t.Errorf("expected one component")
	}
}
