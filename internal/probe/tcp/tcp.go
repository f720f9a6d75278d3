// Package tcp implements mpinger.TCPConnect: RTT measured as the time to
// complete a fresh TCP handshake, once per cadence tick.
package tcp

import (
	"context"
	"net"

	"github.com/pcekm/mpinger/internal/mpinger"
	"github.com/pcekm/mpinger/internal/probe/cadence"
)

func init() {
	mpinger.Register(mpinger.TCPConnect, Run)
}

// Run connects and immediately disconnects once per cadence tick, emitting
// one result per attempt. A connect failure or timeout is reported with
// Duration=0 and IsError=false: TCP-connect failures are NOT marked as
// errors (unlike ICMP/UDP/HTTP), so that a caller infers failure from
// Duration==0 alone. This asymmetry is preserved source behavior, not a
// bug in this reimplementation — see DESIGN.md.
func Run(ctx context.Context, pc *mpinger.ProbeContext, results chan<- mpinger.Result) {
	limiter := cadence.New(pc.Config.PingInterval())

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		timeout := pc.Config.Timeout()
		start := pc.Clock.Now()

		dialer := net.Dialer{Timeout: timeout}
		conn, err := dialer.DialContext(ctx, "tcp4", pc.Dest.TCPAddr().String())

		var duration uint64
		if err == nil {
			duration = uint64(pc.Clock.Since(start).Milliseconds())
			_ = conn.Close()
		}

		results <- mpinger.Result{
			DestinationID:  pc.Dest.ID,
			PingNr:         i,
			RunnerType:     mpinger.TCPConnect,
			StartTimestamp: start.Unix(),
			Duration:       duration,
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
