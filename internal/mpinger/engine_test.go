package mpinger_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcekm/mpinger/internal/mpinger"
	_ "github.com/pcekm/mpinger/internal/probe/random"
)

// S6: add_destination IDs are assigned 1, 2, 3, ... regardless of type.
func TestAddDestinationIDsAreMonotonic(t *testing.T) {
	e := mpinger.New(mpinger.NewConfig())

	id1, err := e.AddDestination(mpinger.Random, "127.0.0.1")
	require.NoError(t, err)
	id2, err := e.AddDestination(mpinger.TCPConnect, "127.0.0.1:80")
	require.NoError(t, err)
	id3, err := e.AddDestination(mpinger.UDP, "127.0.0.1:8888")
	require.NoError(t, err)

	assert.Equal(t, 1, id1)
	assert.Equal(t, 2, id2)
	assert.Equal(t, 3, id3)
}

// Property 1: repeated successful add_destination calls never produce gaps.
func TestAddDestinationIDsHaveNoGaps(t *testing.T) {
	e := mpinger.New(mpinger.NewConfig())

	var ids []int
	for i := 0; i < 10; i++ {
		id, err := e.AddDestination(mpinger.Random, "127.0.0.1")
		require.NoError(t, err)
		ids = append(ids, id)
	}

	for i, id := range ids {
		assert.Equal(t, i+1, id)
	}
}

func TestAddDestinationFailsAfterStart(t *testing.T) {
	e := mpinger.New(mpinger.NewConfig())
	_, err := e.AddDestination(mpinger.Random, "127.0.0.1")
	require.NoError(t, err)

	it := e.Start(1)
	_, ok := it.Next()
	require.True(t, ok)

	_, err = e.AddDestination(mpinger.Random, "127.0.0.1")
	assert.ErrorIs(t, err, mpinger.ErrEngineStarted)
}

// S1: a single Random destination with count=5 yields exactly 5 records,
// ping_nr 0..4 once each, is_error=false, duration in [0,300].
func TestRandomProberEmitsExactCountRecords(t *testing.T) {
	cfg := mpinger.NewConfig(mpinger.WithPingInterval(10 * time.Millisecond))
	e := mpinger.New(cfg)

	id, err := e.AddDestination(mpinger.Random, "127.0.0.1")
	require.NoError(t, err)

	it := e.Start(5)

	seen := map[int]bool{}
	var count int
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		count++
		assert.Equal(t, id, r.DestinationID)
		assert.False(t, r.IsError)
		assert.GreaterOrEqual(t, r.Duration, uint64(0))
		assert.LessOrEqual(t, r.Duration, uint64(300))
		assert.False(t, seen[r.PingNr], "duplicate ping_nr %d", r.PingNr)
		seen[r.PingNr] = true
	}

	assert.Equal(t, 5, count)
	for i := 0; i < 5; i++ {
		assert.True(t, seen[i], "missing ping_nr %d", i)
	}
}

// Property 2/6: per-destination ping_nr forms 0,1,2,... with no gaps or
// duplication, summing to N*K across K destinations.
func TestMultipleDestinationsEachReceiveFullCount(t *testing.T) {
	cfg := mpinger.NewConfig(mpinger.WithPingInterval(5 * time.Millisecond))
	e := mpinger.New(cfg)

	const k = 3
	const n = 4
	ids := make([]int, k)
	for i := 0; i < k; i++ {
		id, err := e.AddDestination(mpinger.Random, "127.0.0.1")
		require.NoError(t, err)
		ids[i] = id
	}

	it := e.Start(n)

	seqByDest := map[int]map[int]bool{}
	var total int
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		total++
		if seqByDest[r.DestinationID] == nil {
			seqByDest[r.DestinationID] = map[int]bool{}
		}
		assert.False(t, seqByDest[r.DestinationID][r.PingNr], "duplicate ping_nr for dest %d", r.DestinationID)
		seqByDest[r.DestinationID][r.PingNr] = true
	}

	assert.Equal(t, n*k, total)
	for _, id := range ids {
		require.Len(t, seqByDest[id], n)
		for i := 0; i < n; i++ {
			assert.True(t, seqByDest[id][i])
		}
	}
}

// S2: TCP connect to a closed local port reports duration=0, is_error=false.
func TestTCPConnectToClosedPortReportsZeroDurationNoError(t *testing.T) {
	cfg := mpinger.NewConfig(
		mpinger.WithPingInterval(5*time.Millisecond),
		mpinger.WithTimeout(200*time.Millisecond),
	)
	e := mpinger.New(cfg)

	_, err := e.AddDestination(mpinger.TCPConnect, "127.0.0.1:1")
	require.NoError(t, err)

	it := e.Start(2)

	var count int
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		count++
		assert.Equal(t, uint64(0), r.Duration)
		assert.False(t, r.IsError)
	}
	assert.Equal(t, 2, count)
}

// S5: with next_timeout=50ms and count=1, the iterator yields one record
// then ends within roughly next_timeout of the last record.
func TestIteratorEndsAfterInactivityTimeout(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cfg := mpinger.NewConfig(
		mpinger.WithPingInterval(10*time.Millisecond),
		mpinger.WithNextTimeout(50*time.Millisecond),
	)
	e := mpinger.New(cfg, mpinger.WithClock(clock))

	_, err := e.AddDestination(mpinger.Random, "127.0.0.1")
	require.NoError(t, err)

	it := e.Start(1)

	done := make(chan bool, 1)
	go func() {
		_, ok := it.Next()
		done <- ok
	}()
	clock.BlockUntil(1)
	clock.Advance(1 * time.Millisecond)
	require.True(t, <-done)

	go func() {
		_, ok := it.Next()
		done <- ok
	}()
	clock.BlockUntil(1)
	clock.Advance(50 * time.Millisecond)
	assert.False(t, <-done)
}

func TestEmptyDestinationTableEndsImmediately(t *testing.T) {
	e := mpinger.New(mpinger.NewConfig())
	it := e.Start(0)
	_, ok := it.Next()
	assert.False(t, ok)
}
