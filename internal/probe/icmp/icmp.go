// Package icmp implements mpinger.ICMP: one raw IPv4 socket per destination,
// with reply correlation by identifier/sequence since a raw socket observes
// every ICMP packet the host receives.
package icmp

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/net/ipv4"

	"github.com/pcekm/mpinger/internal/mpinger"
	"github.com/pcekm/mpinger/internal/probe/cadence"
	"github.com/pcekm/mpinger/internal/wire/icmp"
)

// defaultTTL matches the host's usual default; set explicitly since a raw
// "ip4:icmp" socket is otherwise at the mercy of the OS default, which some
// platforms set surprisingly low for raw sends.
const defaultTTL = 64

func init() {
	mpinger.Register(mpinger.ICMP, Run)
}

const recvBufSize = 64

// Run opens one raw "ip4:icmp" socket for the destination's lifetime. A
// socket that can't be opened (almost always a privilege error) is logged
// and the worker exits without emitting any result, per the source's
// silent-failure contract for ICMP setup errors.
func Run(ctx context.Context, pc *mpinger.ProbeContext, results chan<- mpinger.Result) {
	conn, err := net.ListenPacket("ip4:icmp", "")
	if err != nil {
		pc.Logger.Error("failed to open raw ICMP socket", "destination_id", pc.Dest.ID, "error", err)
		return
	}
	defer conn.Close()

	if err := ipv4.NewPacketConn(conn).SetTTL(defaultTTL); err != nil {
		pc.Logger.Warn("failed to set TTL on raw ICMP socket", "destination_id", pc.Dest.ID, "error", err)
	}

	limiter := cadence.New(pc.Config.PingInterval())

	for i := 0; pc.Count == 0 || i < pc.Count; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !runOne(ctx, conn, pc, uint16(i), results) {
			return
		}

		if pc.Count > 0 && i+1 >= pc.Count {
			return
		}
		if !limiter.Wait(ctx, pc.Config.PingInterval()) {
			return
		}
	}
}

// runOne sends one Echo Request and waits for its matching reply, retrying
// unrelated replies up to PingRetries times. It returns false iff the
// worker must exit (a send error), true otherwise (probe completed,
// successfully or not).
func runOne(ctx context.Context, conn net.PacketConn, pc *mpinger.ProbeContext, sequence uint16, results chan<- mpinger.Result) bool {
	identifier := randomIdentifier()
	pkt := icmp.BuildEchoRequest(identifier, sequence, nil)

	timeout := pc.Config.Timeout()
	start := pc.Clock.Now()

	if err := conn.SetDeadline(start.Add(timeout)); err != nil {
		results <- failureResult(pc, sequence, start)
		return false
	}
	if _, err := conn.WriteTo(pkt, pc.Dest.IPAddr()); err != nil {
		results <- failureResult(pc, sequence, start)
		return false
	}

	buf := make([]byte, recvBufSize)
	retries := pc.Config.PingRetries()

	var boff backoff.BackOff = &backoff.ZeroBackOff{}
	boff = backoff.WithMaxRetries(boff, uint64(maxRetryAttempts(retries)))

	var matched bool
	_ = backoff.Retry(func() error {
		if err := conn.SetReadDeadline(start.Add(timeout)); err != nil {
			return backoff.Permanent(err)
		}
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			return backoff.Permanent(err)
		}
		if icmp.ParseEchoReply(buf, n, identifier, sequence) {
			matched = true
			return nil
		}
		return errNonMatchingReply
	}, boff)

	if matched {
		results <- mpinger.Result{
			DestinationID:  pc.Dest.ID,
			PingNr:         int(sequence),
			RunnerType:     mpinger.ICMP,
			StartTimestamp: start.Unix(),
			Duration:       uint64(pc.Clock.Since(start).Milliseconds()),
			IsError:        false,
		}
		return true
	}

	// Either every retry saw a non-matching reply, or a recv error ended
	// the retry loop early; either way this probe attempt failed, but the
	// worker itself keeps running for the next sequence number.
	results <- failureResult(pc, sequence, start)
	return true
}

// maxRetryAttempts converts a 1-based "ping_retries times" budget into the
// retry count backoff.WithMaxRetries expects (retries beyond the first
// attempt).
func maxRetryAttempts(pingRetries int) int {
	if pingRetries <= 0 {
		return 0
	}
	return pingRetries - 1
}

func failureResult(pc *mpinger.ProbeContext, sequence uint16, start time.Time) mpinger.Result {
	return mpinger.Result{
		DestinationID:  pc.Dest.ID,
		PingNr:         int(sequence),
		RunnerType:     mpinger.ICMP,
		StartTimestamp: start.Unix(),
		Duration:       0,
		IsError:        true,
	}
}

var errNonMatchingReply = errors.New("icmp: reply did not match identifier/sequence")

func randomIdentifier() uint16 {
	return uint16(rand.IntN(1 << 16))
}
