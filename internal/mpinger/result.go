package mpinger

import "time"

// Result is emitted once per probe attempt, success or failure.
//
// Duration's UNIT DEPENDS ON RunnerType: milliseconds for ICMP, TCPConnect,
// and HTTPKeepAlive; microseconds for UDP. This split is a preserved quirk
// of the system this engine reimplements, not a design choice — see
// DESIGN.md. Use RTT for a normalized time.Duration when the raw quirky
// value isn't what you want.
type Result struct {
	DestinationID int

	// PingNr is the zero-based sequence number within this destination's
	// run.
	PingNr int

	RunnerType Type

	// StartTimestamp is wall-clock seconds (Unix epoch) at probe start.
	StartTimestamp int64

	// Duration is the measured RTT, or 0 on failure/timeout. See the
	// type doc for its unit, which varies by RunnerType.
	Duration uint64

	// IsError is true iff the probe did not complete successfully. Note
	// that TCPConnect failures are reported with IsError=false and
	// Duration=0; callers distinguish a TCP timeout by Duration==0. This
	// is intentional, preserved source behavior - see DESIGN.md.
	IsError bool
}

// RTT normalizes Duration into a time.Duration, accounting for the
// millisecond/microsecond split across runner types.
func (r Result) RTT() time.Duration {
	if r.RunnerType == UDP {
		return time.Duration(r.Duration) * time.Microsecond
	}
	return time.Duration(r.Duration) * time.Millisecond
}
