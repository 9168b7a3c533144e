package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLocks_SerializesSameKey(t *testing.T) {
	locks := newSessionLocks()

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locks.Acquire(context.Background(), "s1")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			mu.Lock()
			active++
			maxSeen = max(maxSeen, active)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Zero(t, locks.Len())
}

func TestSessionLocks_DifferentKeysDoNotBlock(t *testing.T) {
	locks := newSessionLocks()

	releaseA, err := locks.Acquire(context.Background(), "a")
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	releaseB, err := locks.Acquire(ctx, "b")
	require.NoError(t, err)
	releaseB()

	assert.Equal(t, 1, locks.Len())
}

func TestSessionLocks_AcquireHonorsContext(t *testing.T) {
	locks := newSessionLocks()

	release, err := locks.Acquire(context.Background(), "s1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locks.Acquire(ctx, "s1")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release()
	assert.Zero(t, locks.Len())
}
