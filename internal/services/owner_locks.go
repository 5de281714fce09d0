package services

import (
	"context"
	"sync"
)

// OwnerLocks serializes store mutations per owner. Entries are dropped once
// no goroutine holds or waits on them.
type OwnerLocks struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

type ownerLock struct {
	slot chan struct{}
	refs int
}

func NewOwnerLocks() *OwnerLocks {
	return &OwnerLocks{locks: make(map[string]*ownerLock)}
}

// Acquire blocks until the owner's lock is free or ctx is done. The returned
// release func must be called exactly once.
func (locks *OwnerLocks) Acquire(ctx context.Context, ownerID string) (func(), error) {
	entry := locks.reference(ownerID)

	select {
	case entry.slot <- struct{}{}:
	case <-ctx.Done():
		locks.dereference(ownerID, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.slot
			locks.dereference(ownerID, entry)
		})
	}, nil
}

func (locks *OwnerLocks) reference(ownerID string) *ownerLock {
	locks.mu.Lock()
	defer locks.mu.Unlock()

	entry, ok := locks.locks[ownerID]
	if !ok {
		entry = &ownerLock{slot: make(chan struct{}, 1)}
		locks.locks[ownerID] = entry
	}
	entry.refs++
	return entry
}

func (locks *OwnerLocks) dereference(ownerID string, entry *ownerLock) {
	locks.mu.Lock()
	defer locks.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(locks.locks, ownerID)
	}
}

func (locks *OwnerLocks) size() int {
	locks.mu.Lock()
	defer locks.mu.Unlock()
	return len(locks.locks)
}
