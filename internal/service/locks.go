package service

import "sync"

// postLocks serializes mutating operations per post. Operations on distinct
// posts proceed in parallel; two writers against the same post never race
// between reading the ledger and writing it.
type postLocks struct {
	mu    sync.Mutex
	locks map[uint]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newPostLocks() *postLocks {
	return &postLocks{locks: make(map[uint]*lockEntry)}
}

// Lock acquires the mutex for the given post, creating it on first use.
// The returned function releases it. Entries are reference-counted and
// removed when the last holder or waiter releases, so a waiter blocked on
// an entry can never be bypassed by a freshly minted mutex for the same id.
func (l *postLocks) Lock(postID uint) func() {
	l.mu.Lock()
	e, ok := l.locks[postID]
	if !ok {
		e = &lockEntry{}
		l.locks[postID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, postID)
		}
		l.mu.Unlock()
	}
}
