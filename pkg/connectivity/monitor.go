// Package connectivity tracks whether the generation backend is reachable.
//
// A Monitor probes the backend once when started and then on a fixed
// interval until stopped. Probes are independent: a failure never delays or
// suppresses the next one, and probes are not serialized, so a slow probe may
// still be outstanding when the next tick fires. Whichever response arrives
// last determines the reported state; under reordering an older probe can
// overwrite a newer result until the following tick.
package connectivity

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/germanamz/localwriter/pkg/apiclient"
)

// DefaultInterval is the time between scheduled probes.
const DefaultInterval = 30 * time.Second

// ErrRunning is returned by Start when the monitor is already running.
var ErrRunning = errors.New("connectivity: monitor already running")

// Status is the tri-state connectivity indicator.
type Status int

const (
	StatusChecking Status = iota
	StatusConnected
	StatusDisconnected
)

func (s Status) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the monitor.
type State struct {
	Status    Status
	ModelInfo *apiclient.ModelInfo // non-nil only when Connected
	CheckedAt time.Time            // zero while Checking
}

// Prober performs one health probe.
type Prober interface {
	CheckHealth(ctx context.Context) (apiclient.Health, error)
}

// Subscription receives state updates from a Monitor.
type Subscription struct {
	C  <-chan State
	ch chan State
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the time between scheduled probes.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

// WithLogger sets the logger probe failures are reported to.
func WithLogger(log *slog.Logger) Option {
	return func(m *Monitor) { m.log = log }
}

// Monitor periodically probes backend health. It is safe for concurrent use.
type Monitor struct {
	prober   Prober
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time

	mu    sync.RWMutex
	state State
	subs  map[*Subscription]struct{}

	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a stopped Monitor in the Checking state.
func New(p Prober, opts ...Option) *Monitor {
	m := &Monitor{
		prober:   p,
		interval: DefaultInterval,
		now:      time.Now,
		subs:     make(map[*Subscription]struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.log == nil {
		m.log = slog.New(slog.DiscardHandler)
	}

	if m.interval <= 0 {
		m.interval = DefaultInterval
	}

	return m
}

// Start resets the state to Checking, probes immediately, and then probes
// every interval until Stop is called or ctx ends.
func (m *Monitor) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.cancel != nil {
		return ErrRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.setState(State{Status: StatusChecking})

	m.wg.Go(func() { m.loop(runCtx) })

	return nil
}

// Stop cancels the timer and any outstanding probes and waits for them to
// exit. No updates are published after Stop returns. Stopping a stopped
// monitor is a no-op.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.cancel == nil {
		return
	}

	m.cancel()
	m.wg.Wait()
	m.cancel = nil
}

// Running reports whether the monitor has been started and not stopped.
func (m *Monitor) Running() bool {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	return m.cancel != nil
}

// State returns the latest state.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state
}

// Subscribe creates a subscription with the given channel buffer size. The
// caller reads from sub.C and eventually calls Unsubscribe.
func (m *Monitor) Subscribe(bufSize int) *Subscription {
	ch := make(chan State, bufSize)
	sub := &Subscription{C: ch, ch: ch}

	m.mu.Lock()
	m.subs[sub] = struct{}{}
	m.mu.Unlock()

	return sub
}

// Unsubscribe removes the subscription and closes its channel.
func (m *Monitor) Unsubscribe(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subs[sub]; ok {
		delete(m.subs, sub)
		close(sub.ch)
	}
}

func (m *Monitor) loop(ctx context.Context) {
	m.wg.Go(func() { m.probe(ctx) })

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.wg.Go(func() { m.probe(ctx) })
		}
	}
}

// probe runs one health check and records its outcome unless the monitor
// was stopped while it was in flight.
func (m *Monitor) probe(ctx context.Context) {
	h, err := m.prober.CheckHealth(ctx)
	if ctx.Err() != nil {
		return
	}

	next := State{CheckedAt: m.now()}

	if err != nil {
		m.log.WarnContext(ctx, "health check failed", "error", err)
		next.Status = StatusDisconnected
	} else {
		info := h.ModelInfo
		next.Status = StatusConnected
		next.ModelInfo = &info
		m.log.DebugContext(ctx, "health check ok", "status", h.Status, "model", info.ModelName)
	}

	m.setState(next)
}

// setState stores s and fans it out. A subscriber whose buffer is full
// misses the update.
func (m *Monitor) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = s

	for sub := range m.subs {
		select {
		case sub.ch <- s:
		default:
		}
	}
}
