package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { NewRunningAverage(0) })
}

func TestEmptyAverage(t *testing.T) {
	r := NewRunningAverage(3)
	_, ok := r.Get()
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
}

func TestAverageBelowCapacity(t *testing.T) {
	r := NewRunningAverage(5)
	r.Add(10)
	r.Add(20)
	r.Add(30)
	got, ok := r.Get()
	assert.True(t, ok)
	assert.Equal(t, float64(20), got)
	assert.Equal(t, 3, r.Count())
}

func TestAverageAboveCapacityDropsOldest(t *testing.T) {
	r := NewRunningAverage(3)
	for _, v := range []uint64{1, 2, 3, 4, 5} {
		r.Add(v)
	}
	// Only the last 3 (3, 4, 5) remain.
	got, ok := r.Get()
	assert.True(t, ok)
	assert.Equal(t, float64(4), got)
	assert.Equal(t, 3, r.Count())
}

func TestClear(t *testing.T) {
	r := NewRunningAverage(2)
	r.Add(5)
	r.Add(7)
	r.Clear()
	_, ok := r.Get()
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
	r.Add(9)
	got, _ := r.Get()
	assert.Equal(t, float64(9), got)
}

func TestSaturatingArithmeticClampsInsteadOfWrapping(t *testing.T) {
	r := NewRunningAverage(2)
	r.Add(math.MaxUint64)
	r.Add(1)
	// The sum clamps at MaxUint64; a wrapping sum would be 0.
	got, ok := r.Get()
	assert.True(t, ok)
	assert.Equal(t, float64(math.MaxUint64)/2, got)
}
