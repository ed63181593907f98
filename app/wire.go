package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/kbukum/flowview/component"
	"github.com/kbukum/flowview/engine"
	"github.com/kbukum/flowview/execution"
	"github.com/kbukum/flowview/graphsource"
	"github.com/kbukum/flowview/logger"
	"github.com/kbukum/flowview/observability"
	"github.com/kbukum/flowview/server"
	"github.com/kbukum/flowview/storage"
	"github.com/kbukum/flowview/view"
)

// Services is the wired object graph of one flowview process.
type Services struct {
	Telemetry  *observability.Component
	Store      *storage.Component
	Engine     *engine.Client
	Source     *graphsource.Source
	Executions *execution.Registry
	Server     *server.Server
	Handler    *view.Handler

	updates chan string
}

// updateBuffer bounds the queued page updates; further updates are dropped
// until a reader catches up.
const updateBuffer = 16

// Build wires every package from cfg. Nothing is started; register
// Components with the bootstrap app for that.
func Build(cfg *Config, log *logger.Logger) (*Services, error) {
	eng, err := engine.New(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("engine client: %w", err)
	}
	metrics, err := observability.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		eng.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}

	store := storage.NewComponent(cfg.Store.Config, cfg.ProviderConfig(), log)
	source := graphsource.New(store, graphsource.WithLogger(log.WithComponent("graphsource")))

	s := &Services{
		Telemetry: observability.NewComponent(cfg.Observability),
		Store:     store,
		Engine:    eng,
		Source:    source,
		Server:    server.New(cfg.Server, log),
		updates:   make(chan string, updateBuffer),
	}
	s.Executions = execution.NewRegistry(source, eng,
		execution.RegistryConfig{Interaction: cfg.Interaction, Poller: cfg.Poller},
		execution.WithMetrics(metrics),
		execution.WithLogger(log.WithComponent("executions")),
		execution.WithUpdateListener(s.pageUpdated),
	)
	s.Handler = view.NewHandler(s.Executions, cfg.View.Options(), log)
	return s, nil
}

// Updates delivers the instance id of every page whose poller applied a
// snapshot. Terminal commands redraw from it.
func (s *Services) Updates() <-chan string { return s.updates }

func (s *Services) pageUpdated(instanceID string) {
	select {
	case s.updates <- instanceID:
	default:
	}
}

// Components lists the lifecycle components in start order. The HTTP
// server is left out for terminal-only commands.
func (s *Services) Components(withServer bool) []component.Component {
	cs := []component.Component{s.Telemetry, s.Store, s.Executions}
	if withServer {
		cs = append(cs, server.NewComponent(s.Server))
	}
	return cs
}

// RegisterRoutes mounts the execution routes and the system endpoints.
func (s *Services) RegisterRoutes(serviceName string, health func(ctx context.Context) []component.Health) {
	s.Handler.Register(s.Server.GinEngine(), s.Server.Throttle())
	s.Server.RegisterDefaultEndpoints(serviceName, health)
}

// Close releases what the components do not own.
func (s *Services) Close() {
	s.Engine.Close()
}
