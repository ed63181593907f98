package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/flowview/component"
	"github.com/kbukum/flowview/config"
	"github.com/kbukum/flowview/logger"
)

type testConfig struct {
	config.ServiceConfig `mapstructure:",squash"`
	failValidate         bool
}

func (c *testConfig) ApplyDefaults() { c.ServiceConfig.ApplyDefaults() }

func (c *testConfig) Validate() error {
	if c.failValidate {
		return errors.New("bad config")
	}
	return c.ServiceConfig.Validate()
}

type recorder struct {
	name   string
	events *[]string
	status component.HealthStatus
	failOn string
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Start(context.Context) error {
	*r.events = append(*r.events, "start:"+r.name)
	if r.failOn == "start" {
		return errors.New("boom")
	}
	return nil
}

func (r *recorder) Stop(context.Context) error {
	*r.events = append(*r.events, "stop:"+r.name)
	return nil
}

func (r *recorder) Health(context.Context) component.Health {
	st := r.status
	if st == "" {
		st = component.StatusHealthy
	}
	return component.Health{Name: r.name, Status: st}
}

func (r *recorder) Describe() component.Description {
	return component.Description{Name: r.name, Type: "test", Details: "in-memory"}
}

func (r *recorder) Routes() []component.Route {
	return []component.Route{{Method: "GET", Path: "/api/executions/:id", Handler: "view.get"}}
}

func newTestApp(t *testing.T, out io.Writer) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "flowview", Environment: "development"}}
	app, err := NewApp(cfg,
		WithLogger(logger.Nop()),
		WithGracefulTimeout(time.Second),
		WithSummaryOutput(out),
	)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, io.Discard)
	if app.Name != "flowview" {
		t.Errorf("Name = %q", app.Name)
	}
	if app.Cfg.Logging.Level != "info" {
		t.Errorf("defaults not applied, level = %q", app.Cfg.Logging.Level)
	}

	_, err := NewApp(&testConfig{ServiceConfig: config.ServiceConfig{Name: "x", Environment: "development"}, failValidate: true})
	if err == nil || !strings.Contains(err.Error(), "config validation") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunTaskOrder(t *testing.T) {
	var events []string
	app := newTestApp(t, io.Discard)
	_ = app.RegisterComponent(&recorder{name: "store", events: &events})
	_ = app.RegisterComponent(&recorder{name: "registry", events: &events})

	app.OnStart(func(context.Context) error { events = append(events, "onStart"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		events = append(events, "configure")
		return nil
	})
	app.OnReady(func(context.Context) error { events = append(events, "onReady"); return nil })
	app.OnStop(func(context.Context) error { events = append(events, "onStop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		events = append(events, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	want := []string{
		"start:store", "start:registry", "onStart", "configure", "onReady",
		"task", "onStop", "stop:registry", "stop:store",
	}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v\nwant %v", events, want)
	}
}

func TestRunTaskError(t *testing.T) {
	var events []string
	app := newTestApp(t, io.Discard)
	_ = app.RegisterComponent(&recorder{name: "store", events: &events})

	taskErr := errors.New("task failed")
	err := app.RunTask(context.Background(), func(context.Context) error { return taskErr })
	if !errors.Is(err, taskErr) {
		t.Fatalf("err = %v, want task error", err)
	}
	if events[len(events)-1] != "stop:store" {
		t.Errorf("components not stopped: %v", events)
	}
}

func TestStartFailureStops(t *testing.T) {
	var events []string
	app := newTestApp(t, io.Discard)
	_ = app.RegisterComponent(&recorder{name: "store", events: &events})
	_ = app.RegisterComponent(&recorder{name: "broken", events: &events, failOn: "start"})

	called := false
	err := app.RunTask(context.Background(), func(context.Context) error { called = true; return nil })
	if err == nil {
		t.Fatal("expected start error")
	}
	if called {
		t.Error("task ran after failed start")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	var events []string
	app := newTestApp(t, io.Discard)
	_ = app.RegisterComponent(&recorder{name: "server", events: &events})

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error { cancel(); return nil })

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if events[len(events)-1] != "stop:server" {
		t.Errorf("events = %v", events)
	}
}

func TestReadyCheck(t *testing.T) {
	var events []string
	app := newTestApp(t, io.Discard)
	_ = app.RegisterComponent(&recorder{name: "ok", events: &events})
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Fatalf("ReadyCheck: %v", err)
	}

	_ = app.RegisterComponent(&recorder{name: "redis", events: &events, status: component.StatusUnhealthy})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "redis=unhealthy") {
		t.Fatalf("ReadyCheck = %v", err)
	}
}

func TestSummaryDisplay(t *testing.T) {
	var buf bytes.Buffer
	var events []string
	app := newTestApp(t, &buf)
	_ = app.RegisterComponent(&recorder{name: "store", events: &events})

	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"flowview dev started",
		"Infrastructure",
		"store [test] in-memory",
		"/api/executions/:id",
		"[ok] store",
		"All components healthy (1/1)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
