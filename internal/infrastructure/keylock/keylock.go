// Package keylock serializes work per key (one quotation at a time).
package keylock

import (
	"context"
	"sync"
)

// Locker acquires an exclusive lock for key. The returned function releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Memory is an in-process Locker. Entries are reference counted and dropped once no goroutine
// holds or waits for the key.
type Memory struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// With runs fn while holding key. A nil Locker runs fn unguarded.
func With(ctx context.Context, l Locker, key string, fn func() error) error {
	if l == nil {
		return fn()
	}
	unlock, err := l.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

func NewMemory() *Memory {
	return &Memory{locks: make(map[string]*entry)}
}

func (m *Memory) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.release(key, e)
		})
	}, nil
}

func (m *Memory) release(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
}
