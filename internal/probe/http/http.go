// Package http implements mpinger.HTTPKeepAlive: RTT measured over one
// persistent TCP connection reused for the destination's entire lifetime,
// issuing a bare GET and timing only the first response chunk.
package http

import (
	"context"
	"fmt"
	"net"

	"github.com/pcekm/mpinger/internal/mpinger"
	"github.com/pcekm/mpinger/internal/probe/cadence"
)

func init() {
	mpinger.Register(mpinger.HTTPKeepAlive, Run)
}

const readChunkSize = 4096

// Run connects once and reuses the connection across every probe attempt.
// A connect failure emits a single failure record and exits the worker
// without entering the cadence loop; a write or read failure on an
// established connection does the same, mid-run.
func Run(ctx context.Context, pc *mpinger.ProbeContext, results chan<- mpinger.Result) {
	timeout := pc.Config.Timeout()

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp4", pc.Dest.TCPAddr().String())
	if err != nil {
		results <- mpinger.Result{
			DestinationID:  pc.Dest.ID,
			PingNr:         0,
			RunnerType:     mpinger.HTTPKeepAlive,
			StartTimestamp: pc.Clock.Now().Unix(),
			Duration:       0,
			IsError:        true,
		}
		return
	}
	defer conn.Close()

	limiter := cadence.New(pc.Config.PingInterval())
	req := []byte(fmt.Sprintf("GET / HTTP/1.1\r\nHost: %s\r\n\r\n", pc.Dest.Host))
	buf := make([]byte, readChunkSize)

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		timeout := pc.Config.Timeout()
		start := pc.Clock.Now()

		if err := conn.SetWriteDeadline(start.Add(timeout)); err == nil {
			_, err = conn.Write(req)
		}
		if err != nil {
			results <- mpinger.Result{
				DestinationID:  pc.Dest.ID,
				PingNr:         i,
				RunnerType:     mpinger.HTTPKeepAlive,
				StartTimestamp: start.Unix(),
				Duration:       0,
				IsError:        true,
			}
			return
		}

		if err := conn.SetReadDeadline(start.Add(timeout)); err != nil {
			results <- mpinger.Result{
				DestinationID:  pc.Dest.ID,
				PingNr:         i,
				RunnerType:     mpinger.HTTPKeepAlive,
				StartTimestamp: start.Unix(),
				Duration:       0,
				IsError:        true,
			}
			return
		}
		n, err := conn.Read(buf)
		if err != nil {
			results <- mpinger.Result{
				DestinationID:  pc.Dest.ID,
				PingNr:         i,
				RunnerType:     mpinger.HTTPKeepAlive,
				StartTimestamp: start.Unix(),
				Duration:       0,
				IsError:        true,
			}
			return
		}
		duration := uint64(pc.Clock.Since(start).Milliseconds())

		// Best-effort drain of any remaining chunks so the next request's
		// read doesn't pick up a stale tail. Errors and short reads here are
		// swallowed: they don't change the RTT already recorded above.
		for n == readChunkSize {
			if err := conn.SetReadDeadline(pc.Clock.Now().Add(timeout)); err != nil {
				break
			}
			n, err = conn.Read(buf)
			if err != nil {
				break
			}
		}

		results <- mpinger.Result{
			DestinationID:  pc.Dest.ID,
			PingNr:         i,
			RunnerType:     mpinger.HTTPKeepAlive,
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
