package execution

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/flowview/engine"
	apperrors "github.com/kbukum/flowview/errors"
	"github.com/kbukum/flowview/graph"
	"github.com/kbukum/flowview/graphsource"
	"github.com/kbukum/flowview/logger"
	"github.com/kbukum/flowview/observability"
	"github.com/kbukum/flowview/poller"
	"github.com/kbukum/flowview/projector"
)

// Completer completes user tasks on the engine.
type Completer interface {
	CompleteNode(ctx context.Context, instanceID, nodeID string, form map[string]string) error
	CompleteTask(ctx context.Context, taskID string) error
}

// Feed supplies the latest status snapshot of an instance.
type Feed interface {
	Snapshot() *engine.Snapshot
	Refresh()
	Stats() poller.Stats
	Interval() time.Duration
}

// Outcome describes what a click did.
type Outcome string

const (
	OutcomeSelected   Outcome = "selected"
	OutcomeFormOpened Outcome = "form_opened"
	OutcomeCompleted  Outcome = "completed"
	OutcomeFailed     Outcome = "failed"
)

// Selection is the node last clicked, with its data as of the click.
type Selection struct {
	Node   graph.Node   `json:"node"`
	Status graph.Status `json:"status"`
}

// ClickResult reports the effect of a click.
type ClickResult struct {
	Outcome   Outcome    `json:"outcome"`
	Selection *Selection `json:"selection,omitempty"`
	Form      *Form      `json:"form,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// State is a consistent copy of a page for rendering.
type State struct {
	InstanceID string
	Mode       string
	Graph      *graph.Graph
	Snapshot   *engine.Snapshot
	Selection  *Selection
	Form       *Form
	Poll       poller.Stats
	Interval   time.Duration
}

// Page is the execution view of one process instance. Selection and form
// state change only under mu.
type Page struct {
	instanceID string
	mode       string
	timeout    time.Duration
	scope      *graphsource.Scope
	feed       Feed
	completer  Completer
	metrics    *observability.Metrics
	log        *logger.Logger

	mu       sync.Mutex
	selected *Selection
	form     *formState
}

// NewPage assembles a page. Registry.Mount is the usual entry point.
func NewPage(scope *graphsource.Scope, feed Feed, completer Completer, cfg Config, metrics *observability.Metrics) *Page {
	cfg.ApplyDefaults()
	return &Page{
		instanceID: scope.InstanceID(),
		mode:       cfg.Mode,
		timeout:    cfg.SubmitTimeout,
		scope:      scope,
		feed:       feed,
		completer:  completer,
		metrics:    metrics,
		log:        logger.WithComponent("execution").WithInstance(scope.InstanceID()),
	}
}

// InstanceID returns the process instance shown by the page.
func (p *Page) InstanceID() string { return p.instanceID }

// Mode returns the completion mode.
func (p *Page) Mode() string { return p.mode }

// Graph returns the displayed graph.
func (p *Page) Graph() *graph.Graph { return p.scope.Graph() }

// State returns a copy of the page for rendering.
func (p *Page) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := State{
		InstanceID: p.instanceID,
		Mode:       p.mode,
		Graph:      p.scope.Graph(),
		Snapshot:   p.feed.Snapshot(),
		Poll:       p.feed.Stats(),
		Interval:   p.feed.Interval(),
	}
	if p.selected != nil {
		sel := *p.selected
		st.Selection = &sel
	}
	if p.form != nil {
		st.Form = p.form.view()
	}
	return st
}

// Click selects nodeID. An active user node opens the task form in form
// mode or completes its task in direct mode; any other node is only
// selected. An open form stays open when another node is selected.
func (p *Page) Click(ctx context.Context, nodeID string) (ClickResult, error) {
	node, ok := p.scope.Graph().Node(nodeID)
	if !ok {
		return ClickResult{}, apperrors.NotFound("node", nodeID)
	}
	snap := p.feed.Snapshot()
	status := projector.Status(snap, nodeID)
	actionable := node.Kind().Capabilities.Completable && status == graph.StatusActive

	p.mu.Lock()
	sel := &Selection{Node: node, Status: status}
	p.selected = sel

	if !actionable {
		p.mu.Unlock()
		return ClickResult{Outcome: OutcomeSelected, Selection: sel}, nil
	}

	if p.mode == ModeForm {
		if p.form != nil && p.form.submitting {
			p.mu.Unlock()
			return ClickResult{}, apperrors.Conflict("a task form is being submitted")
		}
		p.form = newForm(node)
		form := p.form.view()
		p.mu.Unlock()
		return ClickResult{Outcome: OutcomeFormOpened, Selection: sel, Form: form}, nil
	}
	p.mu.Unlock()

	task, ok := snap.TaskForNode(nodeID)
	if !ok {
		p.log.Debug("no task bound to active node, selecting", logger.ErrorFields("lookup_task", apperrors.LookupMiss(nodeID)))
		return ClickResult{Outcome: OutcomeSelected, Selection: sel}, nil
	}
	if err := p.completeTask(ctx, task); err != nil {
		return ClickResult{Outcome: OutcomeFailed, Selection: sel, Error: err.Error()}, nil
	}

	p.mu.Lock()
	if p.selected == sel {
		p.selected = nil
	}
	p.mu.Unlock()
	p.feed.Refresh()
	return ClickResult{Outcome: OutcomeCompleted}, nil
}

func (p *Page) completeTask(ctx context.Context, task engine.Task) (err error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	ctx, span := observability.StartSpan(ctx, "execution.complete_task",
		attribute.String(observability.AttrInstanceID, p.instanceID),
		attribute.String(observability.AttrNodeID, task.NodeID),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err = p.completer.CompleteTask(ctx, task.ID); err != nil {
		p.metrics.RecordCompletion(ctx, ModeDirect, observability.OutcomeFailed)
		p.log.Warn("task completion failed", logger.Fields(
			logger.FieldNodeID, task.NodeID,
			logger.FieldTaskID, task.ID,
			logger.FieldError, err.Error(),
		))
		return err
	}
	p.metrics.RecordCompletion(ctx, ModeDirect, observability.OutcomeOK)
	return nil
}

// Selection returns the current selection, or nil.
func (p *Page) Selection() *Selection {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return nil
	}
	sel := *p.selected
	return &sel
}

// Form returns the open form, or nil.
func (p *Page) Form() *Form {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.form == nil {
		return nil
	}
	return p.form.view()
}

// SetField updates one form input.
func (p *Page) SetField(name, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.form == nil {
		return apperrors.Conflict("no task form is open")
	}
	if !p.form.has(name) {
		return apperrors.InvalidInput(name, "not a field of this form")
	}
	p.form.data[name] = value
	return nil
}

// SetFields updates several form inputs at once; nothing changes if any
// name is unknown.
func (p *Page) SetFields(values map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.form == nil {
		return apperrors.Conflict("no task form is open")
	}
	for name := range values {
		if !p.form.has(name) {
			return apperrors.InvalidInput(name, "not a field of this form")
		}
	}
	for name, value := range values {
		p.form.data[name] = value
	}
	return nil
}

// SubmitForm posts the form values to complete its node. On success the
// form and selection are cleared and an extra status fetch is triggered.
// On failure the form stays open so the user can retry.
func (p *Page) SubmitForm(ctx context.Context) (err error) {
	p.mu.Lock()
	form := p.form
	switch {
	case form == nil:
		p.mu.Unlock()
		return apperrors.Conflict("no task form is open")
	case form.submitting:
		p.mu.Unlock()
		return apperrors.Conflict("a task form is already being submitted")
	}
	form.submitting = true
	nodeID := form.node.ID
	payload := form.payload()
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	ctx, span := observability.StartSpan(ctx, "execution.submit_form",
		attribute.String(observability.AttrInstanceID, p.instanceID),
		attribute.String(observability.AttrNodeID, nodeID),
	)
	defer func() { observability.EndSpan(span, err) }()

	err = p.completer.CompleteNode(ctx, p.instanceID, nodeID, payload)

	p.mu.Lock()
	form.submitting = false
	if err != nil {
		form.lastError = err.Error()
		p.mu.Unlock()

		p.metrics.RecordCompletion(ctx, ModeForm, observability.OutcomeFailed)
		p.log.Warn("task form submit failed, form kept open", logger.Fields(
			logger.FieldNodeID, nodeID,
			logger.FieldError, err.Error(),
		))
		return err
	}
	if p.form == form {
		p.form = nil
	}
	p.selected = nil
	p.mu.Unlock()

	p.metrics.RecordCompletion(ctx, ModeForm, observability.OutcomeOK)
	p.feed.Refresh()
	return nil
}

// CancelForm discards the open form. The selection is kept.
func (p *Page) CancelForm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.form != nil && !p.form.submitting {
		p.form = nil
	}
}
