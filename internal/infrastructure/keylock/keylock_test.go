package keylock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseMutualExclusion(t *testing.T, l Locker) {
	t.Helper()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "quotation:1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestMemory_MutualExclusion(t *testing.T) {
	m := NewMemory()
	exerciseMutualExclusion(t, m)
	assert.Empty(t, m.locks)
}

func TestMemory_IndependentKeys(t *testing.T) {
	m := NewMemory()
	unlockA, err := m.Lock(context.Background(), "quotation:1")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := m.Lock(ctx, "quotation:2")
	require.NoError(t, err)
	unlockB()
}

func TestMemory_ContextCancelled(t *testing.T) {
	m := NewMemory()
	unlock, err := m.Lock(context.Background(), "quotation:1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, "quotation:1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // idempotent
	assert.Empty(t, m.locks)
}

func setupRedisLocker(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	l := NewRedis(rdb)
	l.Interval = time.Millisecond
	return l, mr
}

func TestRedis_MutualExclusion(t *testing.T) {
	l, mr := setupRedisLocker(t)
	exerciseMutualExclusion(t, l)
	assert.False(t, mr.Exists("lock:quotation:1"))
}

func TestRedis_ContextCancelledWhileHeld(t *testing.T) {
	l, mr := setupRedisLocker(t)
	unlock, err := l.Lock(context.Background(), "quotation:7")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:quotation:7"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "quotation:7")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.False(t, mr.Exists("lock:quotation:7"))
}

func TestRedis_ReleaseIgnoresForeignToken(t *testing.T) {
	l, mr := setupRedisLocker(t)
	unlock, err := l.Lock(context.Background(), "quotation:3")
	require.NoError(t, err)

	// Simulate TTL expiry and another holder taking the key.
	require.NoError(t, mr.Set("lock:quotation:3", "someone-else"))
	unlock()

	v, err := mr.Get("lock:quotation:3")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}

func TestWith_NilLockerRunsUnguarded(t *testing.T) {
	called := false
	err := With(context.Background(), nil, "k", func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestWith_ReleasesAfterError(t *testing.T) {
	l := NewMemory()
	boom := errors.New("boom")
	assert.ErrorIs(t, With(context.Background(), l, "k", func() error { return boom }), boom)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlock, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	unlock()
}
