package mpinger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/pcekm/mpinger/internal/resolve"
)

// Engine holds configuration, the destination table, the result channel, and
// the probe lifecycle. It accepts destinations, starts one concurrent
// prober per destination on Start, and hands back a result iterator.
type Engine struct {
	config *Config
	logger *slog.Logger
	clock  clockwork.Clock

	mu           sync.Mutex
	destinations []Destination
	total        int
	started      bool

	tx     chan Result
	cancel context.CancelFunc
}

// Option configures optional, ambient Engine behavior (logging, clock
// injection for tests). None of these change the observable result stream.
type Option func(*Engine)

// WithLogger sets the logger used for setup and per-probe diagnostics.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock injects a clockwork.Clock, which drives probe timestamps, RTT
// measurement, and the result iterator's inactivity timer, for deterministic
// tests of inactivity-timeout behavior. Cadence waits between probes always
// run on real time. Defaults to the real clock.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// New constructs an engine with an empty destination table and result
// channel.
func New(config *Config, opts ...Option) *Engine {
	e := &Engine{
		config: config,
		logger: slog.Default(),
		clock:  clockwork.NewRealClock(),
		tx:     make(chan Result),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetPingInterval mutates the cadence under a write lock. Callable only
// before Start.
func (e *Engine) SetPingInterval(d time.Duration) error {
	return e.config.SetPingInterval(d)
}

// AddDestination resolves address and records a new destination, returning
// its assigned ID (the count of destinations after insertion). It fails
// with one of resolve's sentinel errors, or ErrEngineStarted if the engine
// has already started.
func (e *Engine) AddDestination(pingType Type, address string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return 0, ErrEngineStarted
	}

	ip, port, err := resolve.HostPort(address, e.config.DefaultPort())
	if err != nil {
		return 0, err
	}
	if pingType == ICMP {
		port = 0
	}

	e.total++
	dest := Destination{
		ID:       e.total,
		Address:  address,
		Host:     ip.String(),
		Port:     port,
		PingType: pingType,
	}
	dest.SockAddr = dest.UDPAddr()
	e.destinations = append(e.destinations, dest)
	return dest.ID, nil
}

// GetDestinationByID performs a linear lookup over the destination table.
func (e *Engine) GetDestinationByID(id int) (Destination, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range e.destinations {
		if d.ID == id {
			return d, true
		}
	}
	return Destination{}, false
}

// RunnerDescription returns the fixed human-readable label for a ping type.
func (e *Engine) RunnerDescription(t Type) string {
	if desc, ok := runnerDescriptions[t]; ok {
		return desc
	}
	return t.String()
}

// Start freezes the destination table and spawns one concurrent worker per
// destination, each running the registered prober for its PingType with a
// shared Config handle, a sender for the shared result channel, and count.
//
// count == 0 means "unbounded until Stop is called or the process exits";
// count > 0 means "emit exactly count probe attempts per destination, then
// exit." Start returns a ResultIterator bound to the receiving end of the
// result channel; the engine retains no other reference to it.
func (e *Engine) Start(count int) *ResultIterator {
	e.mu.Lock()
	e.started = true
	dests := append([]Destination(nil), e.destinations...)
	e.mu.Unlock()
	e.config.markStarted()

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	if len(dests) == 0 {
		close(e.tx)
	} else {
		go e.runAll(ctx, dests, count)
	}

	return newResultIterator(e.tx, e.config, e.clock)
}

// Stop cancels every worker's context. The source this engine reimplements
// has no such primitive and instead relies on process exit; this is an
// intentional addition recommended by its own design notes, so that workers
// can exit promptly instead of running until the process is killed.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (e *Engine) runAll(ctx context.Context, dests []Destination, count int) {
	var g errgroup.Group
	for _, dest := range dests {
		rf, ok := lookupRunner(dest.PingType)
		if !ok {
			e.logger.Error("no prober registered for ping type", "type", dest.PingType, "destination_id", dest.ID)
			continue
		}
		dest := dest
		g.Go(func() error {
			pc := &ProbeContext{
				Config: e.config,
				Dest:   dest,
				Count:  count,
				Clock:  e.clock,
				Logger: e.logger,
			}
			rf(ctx, pc, e.tx)
			return nil
		})
	}
	g.Wait()
	close(e.tx)
}
