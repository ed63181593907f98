package execution

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/flowview/component"
	"github.com/kbukum/flowview/engine"
	"github.com/kbukum/flowview/graph"
	"github.com/kbukum/flowview/graphsource"
	"github.com/kbukum/flowview/logger"
	"github.com/kbukum/flowview/poller"
	"github.com/kbukum/flowview/storage"
)

type fakeEngine struct {
	fakeCompleter
	fetches   atomic.Int32
	forgotten []string
}

func (e *fakeEngine) Forget(instanceID string) {
	e.forgotten = append(e.forgotten, instanceID)
}

func (e *fakeEngine) Status(context.Context, string) (*engine.Snapshot, error) {
	e.fetches.Add(1)
	return testSnapshot(), nil
}

func (e *fakeEngine) Execute(context.Context, *graph.Graph) (*engine.Execution, error) {
	return &engine.Execution{InstanceID: "launched-1", Tasks: []string{"Review application"}}, nil
}

func newTestRegistry(t *testing.T) (*Registry, *fakeEngine, *storage.Memory) {
	t.Helper()
	return newIdleRegistry(t, 0)
}

func newIdleRegistry(t *testing.T, idle time.Duration) (*Registry, *fakeEngine, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	src := graphsource.New(store, graphsource.WithLogger(logger.Nop()))
	eng := &fakeEngine{}
	cfg := RegistryConfig{
		Interaction: Config{IdleTimeout: idle},
		Poller:      poller.Config{Interval: time.Hour},
	}
	r := NewRegistry(src, eng, cfg,
		WithLogger(logger.Nop()),
		WithPollerOptions(poller.WithLogger(logger.Nop())),
	)
	t.Cleanup(func() { _ = r.Stop(context.Background()) })
	return r, eng, store
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRegistry_MountGetUnmount(t *testing.T) {
	ctx := context.Background()
	r, eng, store := newTestRegistry(t)

	data, _ := graph.Encode(testGraph())
	_ = store.Save(ctx, graphsource.Key("p1"), data)

	page, err := r.Mount(ctx, "p1", nil)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if len(page.Graph().Nodes) != 5 {
		t.Fatalf("expected stored graph, got %d nodes", len(page.Graph().Nodes))
	}
	waitFor(t, "initial fetch", func() bool { return page.State().Snapshot != nil })

	again, _ := r.Mount(ctx, "p1", nil)
	if again != page {
		t.Error("mounting twice without navigation state must return the same page")
	}
	if got, err := r.Get("p1"); err != nil || got != page {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if ids := r.IDs(); len(ids) != 1 || ids[0] != "p1" {
		t.Errorf("IDs = %v", ids)
	}

	if err := r.Unmount("p1"); err != nil {
		t.Fatalf("Unmount: %v", err)
	}
	fetches := eng.fetches.Load()
	page.feed.Refresh()
	time.Sleep(20 * time.Millisecond)
	if eng.fetches.Load() != fetches {
		t.Error("no fetch may happen after unmount")
	}
	if !page.scope.Closed() {
		t.Error("scope must be cleared on unmount")
	}
	if _, err := r.Get("p1"); err == nil {
		t.Error("expected NotFound after unmount")
	}
	if err := r.Unmount("p1"); err == nil {
		t.Error("expected NotFound on second unmount")
	}
}

func TestRegistry_MountWithNavigationState(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry(t)

	first, _ := r.Mount(ctx, "p1", nil)
	if !first.Graph().IsEmpty() {
		t.Fatal("missing snapshot should mount an empty graph")
	}

	nav := testGraph()
	second, err := r.Mount(ctx, "p1", nav)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if second == first || second.Graph() != nav {
		t.Error("navigation state must remount the page with that graph")
	}
	if !first.scope.Closed() {
		t.Error("replaced page must be torn down")
	}
}

func TestRegistry_Launch(t *testing.T) {
	ctx := context.Background()
	r, _, store := newTestRegistry(t)

	page, exec, err := r.Launch(ctx, testGraph())
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if exec.InstanceID != "launched-1" || page.InstanceID() != "launched-1" {
		t.Fatalf("unexpected launch result %+v", exec)
	}
	if ok, _ := store.Exists(ctx, "graphData_launched-1"); !ok {
		t.Error("launched graph must be stored under its instance key")
	}

	bad := &graph.Graph{Nodes: []graph.Node{{ID: "a"}, {ID: "a"}}}
	if _, _, err := r.Launch(ctx, bad); err == nil {
		t.Error("expected validation error")
	}
}

func TestRegistry_StopUnmountsAll(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry(t)
	_, _ = r.Mount(ctx, "a", nil)
	_, _ = r.Mount(ctx, "b", nil)

	if h := r.Health(ctx); h.Status != component.StatusHealthy || h.Message != "2 page(s) mounted" {
		t.Errorf("unexpected health %+v", h)
	}
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if len(r.IDs()) != 0 {
		t.Error("expected no pages after stop")
	}
	if _, err := r.Mount(ctx, "c", nil); err == nil {
		t.Error("mount after stop must fail")
	}
	if h := r.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy after stop, got %s", h.Status)
	}
}

func TestRegistry_UpdateListener(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	src := graphsource.New(store, graphsource.WithLogger(logger.Nop()))

	updated := make(chan string, 4)
	r := NewRegistry(src, &fakeEngine{}, RegistryConfig{Poller: poller.Config{Interval: time.Hour}},
		WithLogger(logger.Nop()),
		WithPollerOptions(poller.WithLogger(logger.Nop())),
		WithUpdateListener(func(id string) { updated <- id }),
	)
	defer r.Stop(ctx)

	if _, err := r.Mount(ctx, "p1", testGraph()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	select {
	case id := <-updated:
		if id != "p1" {
			t.Errorf("listener got %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener not called after first fetch")
	}
}

func TestRegistry_EvictsIdlePages(t *testing.T) {
	ctx := context.Background()
	r, eng, _ := newIdleRegistry(t, 10*time.Minute)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	idle, _ := r.Mount(ctx, "idle", nil)
	if _, err := r.Mount(ctx, "read", nil); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	waitFor(t, "initial fetches", func() bool { return eng.fetches.Load() == 2 })

	clock = clock.Add(6 * time.Minute)
	if _, err := r.Get("read"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	clock = clock.Add(5 * time.Minute)

	if got := r.evictIdle(); len(got) != 1 || got[0] != "idle" {
		t.Fatalf("evicted = %v, want [idle]", got)
	}
	if ids := r.IDs(); len(ids) != 1 || ids[0] != "read" {
		t.Errorf("IDs = %v", ids)
	}
	if !idle.scope.Closed() {
		t.Error("evicted page scope must be closed")
	}
	fetches := eng.fetches.Load()
	idle.feed.Refresh()
	time.Sleep(20 * time.Millisecond)
	if eng.fetches.Load() != fetches {
		t.Error("evicted page poller must be stopped")
	}
	if len(eng.forgotten) != 1 || eng.forgotten[0] != "idle" {
		t.Errorf("forgotten = %v", eng.forgotten)
	}
}

func TestRegistry_IdleTimeoutDisabled(t *testing.T) {
	r, _, _ := newIdleRegistry(t, -1)
	clock := time.Now()
	r.now = func() time.Time { return clock }
	if _, err := r.Mount(context.Background(), "p1", nil); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	clock = clock.Add(24 * time.Hour)
	if got := r.evictIdle(); len(got) != 0 {
		t.Errorf("evicted %v with idle timeout disabled", got)
	}
	if len(r.IDs()) != 1 {
		t.Error("page must stay mounted")
	}
}

func TestRegistry_IdleSweep(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newIdleRegistry(t, 40*time.Millisecond)
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	page, err := r.Mount(ctx, "p1", nil)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	waitFor(t, "idle unmount", func() bool { return len(r.IDs()) == 0 })
	if !page.scope.Closed() {
		t.Error("scope must be closed after idle unmount")
	}
}
