// Package udp implements mpinger.UDP: a fresh socket per probe, a fixed
// "ping" payload, and RTT reported in microseconds (unlike every other
// runner, which reports milliseconds).
package udp

import (
	"context"
	"net"

	"github.com/pcekm/mpinger/internal/mpinger"
	"github.com/pcekm/mpinger/internal/probe/cadence"
)

func init() {
	mpinger.Register(mpinger.UDP, Run)
}

var pingPayload = []byte("ping")

// Run sends one "ping" datagram per cadence tick over a fresh socket and
// times the first reply, without inspecting its contents. A socket-creation
// failure skips the iteration entirely: no record is emitted and the probe
// counter does not advance, matching the other runners' all-count-records
// convention everywhere except this one deliberate exception.
func Run(ctx context.Context, pc *mpinger.ProbeContext, results chan<- mpinger.Result) {
	limiter := cadence.New(pc.Config.PingInterval())

	for i := 0; pc.Count == 0 || i < pc.Count; {
		select {
		case <-ctx.Done():
			return
		default:
		}

		timeout := pc.Config.Timeout()

		conn, err := net.DialTimeout("udp4", pc.Dest.UDPAddr().String(), timeout)
		if err != nil {
			if !limiter.Wait(ctx, pc.Config.PingInterval()) {
				return
			}
			continue
		}

		start := pc.Clock.Now()
		result := mpinger.Result{
			DestinationID:  pc.Dest.ID,
			PingNr:         i,
			RunnerType:     mpinger.UDP,
			StartTimestamp: start.Unix(),
		}

		if err := conn.SetDeadline(start.Add(timeout)); err != nil {
			result.IsError = true
		} else if _, err := conn.Write(pingPayload); err != nil {
			result.IsError = true
		} else {
			buf := make([]byte, 1024)
			if _, err := conn.Read(buf); err != nil {
				result.IsError = true
			} else {
				result.Duration = uint64(pc.Clock.Since(start).Microseconds())
			}
		}
		conn.Close()

		results <- result
		i++

		if pc.Count > 0 && i >= pc.Count {
			return
		}
		if !limiter.Wait(ctx, pc.Config.PingInterval()) {
			return
		}
	}
}

