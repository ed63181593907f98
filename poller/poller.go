// Package poller keeps the execution status of one process instance fresh
// by fetching it on a fixed interval.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/flowview/engine"
	"github.com/kbukum/flowview/logger"
	"github.com/kbukum/flowview/observability"
)

// Fetcher retrieves the current status of an instance.
type Fetcher interface {
	Status(ctx context.Context, instanceID string) (*engine.Snapshot, error)
}

// Ticker is the part of time.Ticker the poller uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// Stats counts fetch outcomes since Start.
type Stats struct {
	Fetches     int       `json:"fetches"`
	Failures    int       `json:"failures"`
	Stale       int       `json:"stale"`
	LastError   string    `json:"lastError,omitempty"`
	LastSuccess time.Time `json:"lastSuccess,omitempty"`
}

// Option customizes a Poller.
type Option func(*Poller)

// WithTicker replaces the interval ticker, used by tests to drive ticks.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(p *Poller) { p.newTicker = newTicker }
}

// WithMetrics records fetch outcomes on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Poller) { p.metrics = m }
}

// WithLogger replaces the poller's logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Poller) { p.log = l }
}

// OnUpdate registers a callback run after each applied snapshot.
func OnUpdate(fn func(*engine.Snapshot)) Option {
	return func(p *Poller) { p.onUpdate = append(p.onUpdate, fn) }
}

// Poller fetches status once on Start, then once per tick until Stop.
// Each fetch carries a sequence number; a response older than the last
// applied one is dropped. A failed fetch keeps the previous snapshot.
type Poller struct {
	instanceID string
	fetcher    Fetcher
	cfg        Config
	newTicker  func(time.Duration) Ticker
	metrics    *observability.Metrics
	log        *logger.Logger
	onUpdate   []func(*engine.Snapshot)

	mu          sync.Mutex
	current     *engine.Snapshot
	nextSeq     uint64
	lastApplied uint64
	stats       Stats
	running     bool
	stopped     bool
	cancel      context.CancelFunc
	ctx         context.Context
	wg          sync.WaitGroup
}

// New creates a poller for one instance.
func New(instanceID string, fetcher Fetcher, cfg Config, opts ...Option) *Poller {
	cfg.ApplyDefaults("")
	p := &Poller{
		instanceID: instanceID,
		fetcher:    fetcher,
		cfg:        cfg,
		newTicker: func(d time.Duration) Ticker {
			return timeTicker{time.NewTicker(d)}
		},
		log: logger.WithComponent("poller").WithInstance(instanceID),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start fetches immediately and then on every tick. It returns at once;
// polling continues until Stop or until ctx is cancelled. Start on a
// running or stopped poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running || p.stopped {
		return
	}
	p.running = true
	p.ctx, p.cancel = context.WithCancel(ctx)

	ticker := p.newTicker(p.cfg.Interval)
	p.spawnLocked()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-p.ctx.Done():
				return
			case <-ticker.C():
				p.mu.Lock()
				p.spawnLocked()
				p.mu.Unlock()
			}
		}
	}()

	p.log.Debug("polling started", logger.Fields("interval", p.cfg.Interval.String()))
}

// Refresh triggers an immediate fetch outside the regular cadence.
func (p *Poller) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spawnLocked()
}

// Stop cancels the ticker and every in-flight fetch and waits for them to
// return. No fetch starts and no snapshot is applied after Stop.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Debug("polling stopped")
}

// Snapshot returns the latest applied snapshot, or nil before the first
// successful fetch. The returned value must not be modified.
func (p *Poller) Snapshot() *engine.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Stats returns a copy of the fetch counters.
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Interval returns the polling period.
func (p *Poller) Interval() time.Duration { return p.cfg.Interval }

// spawnLocked starts one fetch. Callers hold mu.
func (p *Poller) spawnLocked() {
	if !p.running || p.stopped || p.ctx.Err() != nil {
		return
	}
	p.nextSeq++
	seq := p.nextSeq
	p.stats.Fetches++

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.fetch(seq)
	}()
}

func (p *Poller) fetch(seq uint64) {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	snap, err := p.fetcher.Status(ctx, p.instanceID)
	elapsed := time.Since(start)

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	if err != nil {
		p.stats.Failures++
		p.stats.LastError = err.Error()
		p.mu.Unlock()

		p.metrics.RecordFetch(p.ctx, p.instanceID, observability.OutcomeFailed, elapsed)
		p.log.Warn("status fetch failed, keeping previous snapshot", logger.Fields(
			logger.FieldSeq, seq,
			logger.FieldError, err.Error(),
		))
		return
	}
	if applied := p.lastApplied; seq < applied {
		p.stats.Stale++
		p.mu.Unlock()

		p.metrics.RecordFetch(p.ctx, p.instanceID, observability.OutcomeStale, elapsed)
		p.log.Debug("discarding stale status", logger.Fields(logger.FieldSeq, seq, "applied", applied))
		return
	}

	snap.Seq = seq
	p.current = snap
	p.lastApplied = seq
	p.stats.LastSuccess = time.Now()
	listeners := p.onUpdate
	p.mu.Unlock()

	p.metrics.RecordFetch(p.ctx, p.instanceID, observability.OutcomeOK, elapsed)
	for _, fn := range listeners {
		fn(snap)
	}
}
