package execution

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kbukum/flowview/component"
	"github.com/kbukum/flowview/engine"
	apperrors "github.com/kbukum/flowview/errors"
	"github.com/kbukum/flowview/graph"
	"github.com/kbukum/flowview/graphsource"
	"github.com/kbukum/flowview/logger"
	"github.com/kbukum/flowview/observability"
	"github.com/kbukum/flowview/poller"
)

// Engine is the engine surface a registry needs.
type Engine interface {
	poller.Fetcher
	Completer
	Execute(ctx context.Context, g *graph.Graph) (*engine.Execution, error)
}

// RegistryConfig bundles the settings shared by every mounted page.
type RegistryConfig struct {
	Interaction Config
	Poller      poller.Config
}

type mounted struct {
	page     *Page
	poller   *poller.Poller
	scope    *graphsource.Scope
	lastRead time.Time
}

// forgetter is implemented by engines that remember per-instance state.
type forgetter interface {
	Forget(instanceID string)
}

// Registry mounts one page per process instance and keeps its poller
// running until the page is unmounted or stays unread for the idle
// timeout.
type Registry struct {
	source  *graphsource.Source
	engine  Engine
	cfg     RegistryConfig
	metrics *observability.Metrics
	log     *logger.Logger
	popts   []poller.Option
	updates []func(instanceID string)
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	pages map[string]*mounted
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithMetrics records page and completion metrics on m.
func WithMetrics(m *observability.Metrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// WithLogger replaces the registry logger; pages derive theirs from it.
func WithLogger(l *logger.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// WithPollerOptions passes extra options to every page poller.
func WithPollerOptions(opts ...poller.Option) RegistryOption {
	return func(r *Registry) { r.popts = append(r.popts, opts...) }
}

// WithUpdateListener calls fn after a page's poller applies a snapshot.
func WithUpdateListener(fn func(instanceID string)) RegistryOption {
	return func(r *Registry) { r.updates = append(r.updates, fn) }
}

// NewRegistry creates an empty registry.
func NewRegistry(source *graphsource.Source, eng Engine, cfg RegistryConfig, opts ...RegistryOption) *Registry {
	cfg.Interaction.ApplyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		source: source,
		engine: eng,
		cfg:    cfg,
		log:    logger.WithComponent("executions"),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
		pages:  make(map[string]*mounted),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mount returns the page of instanceID, mounting it if needed. Passing
// navigation state remounts the page with that graph.
func (r *Registry) Mount(ctx context.Context, instanceID string, navState *graph.Graph) (*Page, error) {
	if instanceID == "" {
		return nil, apperrors.MissingField("instanceId")
	}
	if r.ctx.Err() != nil {
		return nil, apperrors.ServiceUnavailable("executions")
	}

	r.mu.Lock()
	if m, ok := r.pages[instanceID]; ok && navState == nil {
		m.lastRead = r.now()
		r.mu.Unlock()
		return m.page, nil
	}
	old := r.pages[instanceID]
	delete(r.pages, instanceID)
	r.mu.Unlock()
	if old != nil {
		r.teardown(instanceID, old)
	}

	scope := r.source.Open(ctx, instanceID, navState)
	pcfg := r.cfg.Poller
	opts := append([]poller.Option{poller.WithMetrics(r.metrics)}, r.popts...)
	for _, fn := range r.updates {
		opts = append(opts, poller.OnUpdate(func(*engine.Snapshot) { fn(instanceID) }))
	}
	p := poller.New(instanceID, r.engine, pcfg, opts...)
	page := NewPage(scope, p, r.engine, r.cfg.Interaction, r.metrics)
	page.log = r.log.WithInstance(instanceID)

	r.mu.Lock()
	if existing, ok := r.pages[instanceID]; ok {
		// Lost a race with a concurrent mount.
		r.mu.Unlock()
		scope.Close()
		return existing.page, nil
	}
	r.pages[instanceID] = &mounted{page: page, poller: p, scope: scope, lastRead: r.now()}
	r.mu.Unlock()

	p.Start(r.ctx)
	r.metrics.PageMounted(ctx, 1)
	r.log.Info("page mounted", logger.Fields(
		logger.FieldInstanceID, instanceID,
		"nodes", len(scope.Graph().Nodes),
		"mode", page.Mode(),
	))
	return page, nil
}

// Launch starts g on the engine, stores it as the instance snapshot and
// mounts the page. A store failure is logged; the page still shows g.
func (r *Registry) Launch(ctx context.Context, g *graph.Graph) (*Page, *engine.Execution, error) {
	if err := g.Validate(); err != nil {
		return nil, nil, apperrors.InvalidInput("graph", err.Error())
	}
	exec, err := r.engine.Execute(ctx, g)
	if err != nil {
		return nil, nil, err
	}
	if err := r.source.Import(ctx, exec.InstanceID, g); err != nil {
		r.log.Warn("could not store graph snapshot", logger.MergeWithError(
			logger.Fields(logger.FieldInstanceID, exec.InstanceID), err))
	}
	page, err := r.Mount(ctx, exec.InstanceID, g)
	if err != nil {
		return nil, nil, err
	}
	return page, exec, nil
}

// Get returns a mounted page without mounting it.
func (r *Registry) Get(instanceID string) (*Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.pages[instanceID]
	if !ok {
		return nil, apperrors.NotFound("execution", instanceID)
	}
	m.lastRead = r.now()
	return m.page, nil
}

// IDs lists mounted instances in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.pages))
	for id := range r.pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Unmount stops the page's poller and clears its scope.
func (r *Registry) Unmount(instanceID string) error {
	r.mu.Lock()
	m, ok := r.pages[instanceID]
	delete(r.pages, instanceID)
	r.mu.Unlock()
	if !ok {
		return apperrors.NotFound("execution", instanceID)
	}
	r.teardown(instanceID, m)
	return nil
}

// evictIdle unmounts the pages not read within the idle timeout and
// returns their ids.
func (r *Registry) evictIdle() []string {
	idle := r.cfg.Interaction.IdleTimeout
	if idle <= 0 {
		return nil
	}
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var ids []string
	var stale []*mounted
	for id, m := range r.pages {
		if m.lastRead.Before(cutoff) {
			ids = append(ids, id)
			stale = append(stale, m)
			delete(r.pages, id)
		}
	}
	r.mu.Unlock()

	for i, m := range stale {
		r.log.Debug("unmounting idle page", logger.Fields(logger.FieldInstanceID, ids[i], "idle", idle.String()))
		r.teardown(ids[i], m)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.evictIdle()
		}
	}
}

func (r *Registry) teardown(instanceID string, m *mounted) {
	m.poller.Stop()
	m.scope.Close()
	if f, ok := r.engine.(forgetter); ok {
		f.Forget(instanceID)
	}
	r.metrics.PageMounted(context.Background(), -1)
	r.log.Info("page unmounted", logger.Fields(logger.FieldInstanceID, instanceID))
}

var _ component.Component = (*Registry)(nil)

// Name returns the component name.
func (r *Registry) Name() string { return "executions" }

// Start runs the idle sweep. Pages themselves are mounted on demand.
func (r *Registry) Start(context.Context) error {
	if idle := r.cfg.Interaction.IdleTimeout; idle > 0 {
		every := idle / 2
		if every <= 0 {
			every = idle
		}
		go r.sweep(every)
	}
	return nil
}

// Stop unmounts every page.
func (r *Registry) Stop(context.Context) error {
	r.cancel()
	r.mu.Lock()
	pages := r.pages
	r.pages = make(map[string]*mounted)
	r.mu.Unlock()

	for id, m := range pages {
		r.teardown(id, m)
	}
	return nil
}

// Health reports how many pages are mounted.
func (r *Registry) Health(context.Context) component.Health {
	r.mu.Lock()
	n := len(r.pages)
	r.mu.Unlock()
	if r.ctx.Err() != nil {
		return component.Health{Name: r.Name(), Status: component.StatusUnhealthy, Message: "stopped"}
	}
	return component.Health{
		Name:    r.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d page(s) mounted", n),
	}
}

// Describe returns infrastructure summary info for the bootstrap display.
func (r *Registry) Describe() component.Description {
	return component.Description{
		Name:    "Executions",
		Type:    "registry",
		Details: fmt.Sprintf("mode=%s idle_timeout=%s", r.cfg.Interaction.Mode, r.cfg.Interaction.IdleTimeout),
	}
}
