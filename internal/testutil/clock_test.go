package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var clockStart = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func TestClock_Advances(t *testing.T) {
	clock := NewClock(clockStart, time.Second)

	assert.Equal(t, clockStart, clock.Now())
	assert.Equal(t, clockStart.Add(time.Second), clock.Now())
	assert.Equal(t, clockStart.Add(2*time.Second), clock.Now())
	assert.Equal(t, int64(3), clock.Calls())
}

func TestClock_ZeroStepIsFrozen(t *testing.T) {
	clock := NewClock(clockStart, 0)

	assert.Equal(t, clock.Now(), clock.Now())
}

func TestClock_Reset(t *testing.T) {
	clock := NewClock(clockStart, time.Minute)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Calls())
	assert.Equal(t, clockStart, clock.Now())
}

func TestClock_ConcurrentCallsAreDistinct(t *testing.T) {
	clock := NewClock(clockStart, time.Millisecond)
	const goroutines = 50

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[time.Time]bool)
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts := clock.Now()
			mu.Lock()
			seen[ts] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines)
}
