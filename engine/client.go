package engine

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/kbukum/flowview/errors"
	"github.com/kbukum/flowview/graph"
	"github.com/kbukum/flowview/httpclient"
	"github.com/kbukum/flowview/logger"
	"github.com/kbukum/flowview/observability"
	"github.com/kbukum/flowview/version"
)

// Client is the process engine client.
type Client struct {
	http    *httpclient.Adapter
	fixed   dialect
	baseURL string
	log     *logger.Logger

	mu      sync.Mutex
	learned map[string]dialect
}

// New creates an engine client from configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, _ := dialectByName(cfg.Dialect)

	hc := httpclient.Config{
		Name:    "engine",
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Headers: map[string]string{"User-Agent": version.UserAgent()},
	}
	if cfg.TLS.IsEnabled() {
		hc.TLS = &cfg.TLS
	}
	if cfg.Retry.Enabled {
		r := httpclient.DefaultRetryConfig()
		r.MaxAttempts = cfg.Retry.MaxAttempts
		r.InitialBackoff = cfg.Retry.Backoff
		hc.Retry = r
	}
	if cfg.CircuitBreaker.Enabled {
		cb := httpclient.DefaultCircuitBreakerConfig("engine")
		cb.MaxFailures = cfg.CircuitBreaker.MaxFailures
		cb.Timeout = cfg.CircuitBreaker.Cooldown
		hc.CircuitBreaker = cb
	}
	adapter, err := httpclient.New(hc)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:    adapter,
		fixed:   d,
		baseURL: cfg.BaseURL,
		log:     logger.WithComponent("engine"),
		learned: make(map[string]dialect),
	}, nil
}

// BaseURL returns the configured engine address.
func (c *Client) BaseURL() string { return c.baseURL }

// Dialect returns the configured dialect name.
func (c *Client) Dialect() string {
	if c.fixed == nil {
		return DialectAuto
	}
	return c.fixed.name()
}

// Close releases idle connections.
func (c *Client) Close() { c.http.Close() }

// Status fetches the execution status of an instance. Transport problems
// and non-2xx replies return a TRANSPORT_FAILURE error, undecodable bodies
// a DESERIALIZATION_FAILURE error.
func (c *Client) Status(ctx context.Context, instanceID string) (snap *Snapshot, err error) {
	ctx, span := observability.StartSpan(ctx, "engine.status",
		attribute.String(observability.AttrInstanceID, instanceID),
		attribute.String(observability.AttrDialect, c.Dialect()),
	)
	defer func() { observability.EndSpan(span, err) }()

	d := c.fixed
	if d == nil {
		return c.autoStatus(ctx, instanceID)
	}

	body, err := c.get(ctx, d.statusPath(instanceID))
	if err != nil {
		return nil, err
	}
	snap, decodeErr := d.decode(body)
	if decodeErr != nil {
		return nil, apperrors.DeserializationFailure("status", decodeErr)
	}
	snap.FetchedAt = time.Now()
	return snap, nil
}

// autoStatus tries the remembered route for the instance first, then the
// other route when it answers 404. The instance is forgotten when both
// routes answer 404.
func (c *Client) autoStatus(ctx context.Context, instanceID string) (*Snapshot, error) {
	c.mu.Lock()
	known := c.learned[instanceID]
	c.mu.Unlock()

	candidates := []dialect{apiDialect{}, legacyDialect{}}
	if known != nil && known.name() == DialectLegacy {
		candidates = []dialect{legacyDialect{}, apiDialect{}}
	}

	var body []byte
	var err error
	for _, d := range candidates {
		body, err = c.get(ctx, d.statusPath(instanceID))
		if err == nil {
			c.mu.Lock()
			c.learned[instanceID] = d
			c.mu.Unlock()
			break
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	if err != nil {
		c.Forget(instanceID)
		return nil, err
	}

	d, sniffErr := sniff(body)
	if sniffErr != nil {
		return nil, apperrors.DeserializationFailure("status", sniffErr)
	}
	snap, decodeErr := d.decode(body)
	if decodeErr != nil {
		return nil, apperrors.DeserializationFailure("status", decodeErr)
	}
	snap.FetchedAt = time.Now()
	return snap, nil
}

// Forget drops the route remembered for an instance.
func (c *Client) Forget(instanceID string) {
	c.mu.Lock()
	delete(c.learned, instanceID)
	c.mu.Unlock()
}

func isNotFound(err error) bool {
	e, ok := apperrors.AsAppError(err)
	return ok && e.Details["upstream_status"] == http.StatusNotFound
}

// CompleteNode completes the user task bound to nodeID, posting the form
// values as the JSON body.
func (c *Client) CompleteNode(ctx context.Context, instanceID, nodeID string, form map[string]string) (err error) {
	ctx, span := observability.StartSpan(ctx, "engine.complete_node",
		attribute.String(observability.AttrInstanceID, instanceID),
		attribute.String(observability.AttrNodeID, nodeID),
	)
	defer func() { observability.EndSpan(span, err) }()

	if form == nil {
		form = map[string]string{}
	}
	_, err = c.do(ctx, "complete", httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/process/task/complete/" + url.PathEscape(nodeID),
		Query:  map[string]string{"processInstanceId": instanceID},
		Body:   form,
	})
	if err == nil {
		c.log.Info("task completed", logger.Fields(logger.FieldInstanceID, instanceID, logger.FieldNodeID, nodeID))
	}
	return err
}

// CompleteTask completes a task by its engine task id. No body is sent.
func (c *Client) CompleteTask(ctx context.Context, taskID string) (err error) {
	ctx, span := observability.StartSpan(ctx, "engine.complete_task")
	defer func() { observability.EndSpan(span, err) }()

	_, err = c.do(ctx, "complete", httpclient.Request{
		Method: http.MethodPost,
		Path:   "/process/complete-task/" + url.PathEscape(taskID),
	})
	if err == nil {
		c.log.Info("task completed", logger.Fields(logger.FieldTaskID, taskID))
	}
	return err
}

// Execute deploys and starts a graph on the engine.
func (c *Client) Execute(ctx context.Context, g *graph.Graph) (exec *Execution, err error) {
	ctx, span := observability.StartSpan(ctx, "engine.execute")
	defer func() { observability.EndSpan(span, err) }()

	resp, err := httpclient.Post[Execution](c.http, ctx, "/process/execute", g)
	if err != nil {
		return nil, c.classify("execute", err)
	}
	if resp.Data.InstanceID == "" {
		return nil, apperrors.DeserializationFailure("execute", errMissingInstanceID)
	}
	if resp.Data.Tasks == nil {
		resp.Data.Tasks = []string{}
	}
	c.log.Info("process started", logger.Fields(
		logger.FieldInstanceID, resp.Data.InstanceID,
		"tasks", len(resp.Data.Tasks),
	))
	return &resp.Data, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.do(ctx, "status", httpclient.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, op string, req httpclient.Request) (*httpclient.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, c.classify(op, err)
	}
	c.log.Debug("engine call", logger.Fields(
		logger.FieldOperation, op,
		"path", req.Path,
		logger.FieldStatus, resp.StatusCode,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return resp, nil
}

func (c *Client) classify(op string, err error) error {
	e, ok := httpclient.AsError(err)
	if !ok {
		return apperrors.TransportFailure(op, 0, err)
	}
	if e.Code == httpclient.ErrCodeDecode {
		return apperrors.DeserializationFailure(op, err)
	}
	return apperrors.TransportFailure(op, e.StatusCode, err)
}
