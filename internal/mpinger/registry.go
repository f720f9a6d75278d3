package mpinger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
)

// ProbeContext carries everything a runner needs to probe one destination.
type ProbeContext struct {
	Config *Config
	Dest   Destination

	// Count is the number of probe attempts to make. 0 means run until ctx
	// is canceled.
	Count int

	Clock  clockwork.Clock
	Logger *slog.Logger
}

// RunnerFunc implements one probe protocol's state machine for a single
// destination. It must send exactly one Result per probe attempt on
// results, and return when its run is complete: Count attempts reached, an
// unrecoverable setup error, or ctx canceled. It never closes results.
type RunnerFunc func(ctx context.Context, pc *ProbeContext, results chan<- Result)

var (
	registryMu sync.RWMutex
	registry   = map[Type]RunnerFunc{}
)

// Register installs the runner for a ping type. Probe implementations call
// this from an init() function in the package that implements them, so that
// the engine never imports concrete protocol packages directly (avoiding an
// import cycle, since those packages depend on mpinger for its types).
func Register(t Type, fn RunnerFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = fn
}

func lookupRunner(t Type) (RunnerFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[t]
	return fn, ok
}
