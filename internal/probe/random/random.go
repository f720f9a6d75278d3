// Package random implements mpinger.Random, a no-network stub prober used
// for smoke-testing the engine and its consumers.
package random

import (
	"context"
	"math/rand/v2"

	"github.com/pcekm/mpinger/internal/mpinger"
	"github.com/pcekm/mpinger/internal/probe/cadence"
)

func init() {
	mpinger.Register(mpinger.Random, Run)
}

// Run emits a success result every cadence tick, with Duration drawn
// uniformly from [0, 300] ms and no network I/O.
func Run(ctx context.Context, pc *mpinger.ProbeContext, results chan<- mpinger.Result) {
	limiter := cadence.New(pc.Config.PingInterval())

	for i := 0; pc.Count == 0 || i < pc.Count; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- mpinger.Result{
			DestinationID:  pc.Dest.ID,
			PingNr:         i,
			RunnerType:     mpinger.Random,
			StartTimestamp: pc.Clock.Now().Unix(),
			Duration:       uint64(rand.IntN(301)),
			IsError:        false,
		}

		if pc.Count > 0 && i+1 >= pc.Count {
			return
		}
		if !limiter.Wait(ctx, pc.Config.PingInterval()) {
			return
		}
	}
}
