package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_StartsAtZero(t *testing.T) {
	assert.Equal(t, int64(0), NewClock().Current())
}

func TestClock_NewClockAt_ContinuesSequence(t *testing.T) {
	c := NewClockAt(41)
	assert.Equal(t, int64(41), c.Current())
	assert.Equal(t, int64(42), c.Next(), "a loaded session continues after the saved seq")
}

func TestClock_Next_StrictlyIncreasing(t *testing.T) {
	c := NewClock()
	prev := c.Current()
	for range 100 {
		seq := c.Next()
		assert.Greater(t, seq, prev)
		prev = seq
	}
	assert.Equal(t, int64(100), c.Current())
}

func TestClock_ConcurrentNext_Unique(t *testing.T) {
	c := NewClock()
	const goroutines, calls = 20, 50

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range calls {
				seq := c.Next()
				mu.Lock()
				seen[seq] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*calls)
	assert.Equal(t, int64(goroutines*calls), c.Current())
}
