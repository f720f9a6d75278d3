package mpinger

import "github.com/jonboulle/clockwork"

// ResultIterator is a consumer-facing lazy stream over the engine's result
// channel, with an inactivity timeout: end of stream when no result arrives
// within Config.NextTimeout.
//
// Workers never send an explicit end-of-stream sentinel. The stream ends
// when either every worker has finished and the channel closed, or the gap
// between two results exceeds NextTimeout (the consumer assumes the run is
// hung or complete). This is deliberately coarse: a long PingInterval can
// spuriously end the stream if it approaches NextTimeout. Callers should
// keep NextTimeout comfortably larger than PingInterval plus the worst-case
// Timeout.
type ResultIterator struct {
	ch     <-chan Result
	config *Config
	clock  clockwork.Clock
}

func newResultIterator(ch <-chan Result, config *Config, clock clockwork.Clock) *ResultIterator {
	return &ResultIterator{ch: ch, config: config, clock: clock}
}

// Next waits for the next result with an inactivity timeout of
// Config.NextTimeout. It returns ok=false on timeout or channel closure.
func (it *ResultIterator) Next() (Result, bool) {
	timer := it.clock.NewTimer(it.config.NextTimeout())
	defer timer.Stop()
	select {
	case r, ok := <-it.ch:
		if !ok {
			return Result{}, false
		}
		return r, true
	case <-timer.Chan():
		return Result{}, false
	}
}

// All returns a func1-shaped iterator (range-over-func, Go 1.23) over the
// result stream, stopping at end of stream exactly as Next does.
func (it *ResultIterator) All() func(func(Result) bool) {
	return func(yield func(Result) bool) {
		for {
			r, ok := it.Next()
			if !ok {
				return
			}
			if !yield(r) {
				return
			}
		}
	}
}
