package lock

import (
	"context"
	"sync"
)

// Local is an in-process keyed mutex. The zero value is ready to use.
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocal returns an empty Local manager.
func NewLocal() *Local {
	return &Local{}
}

// Acquire implements Manager.
func (l *Local) Acquire(ctx context.Context, key string) (Release, error) {
	l.mu.Lock()
	if l.slots == nil {
		l.slots = make(map[string]*slot)
	}
	s := l.slots[key]
	if s == nil {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, s)
		return nil, notAcquired(key, ctx.Err())
	}

	var once sync.Once
	return func() error {
		once.Do(func() {
			<-s.ch
			l.drop(key, s)
		})
		return nil
	}, nil
}

// drop forgets s once nobody holds or waits on it.
func (l *Local) drop(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 && l.slots[key] == s {
		delete(l.slots, key)
	}
}

// held reports how many keys have holders or waiters.
func (l *Local) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
