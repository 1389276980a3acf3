package commands

import "sync"

// escrowLocks serializes mutations of one escrow inside this process so
// writers on the same escrow queue instead of racing on the version column.
// Optimistic versioning still arbitrates between processes.
var escrowLocks = newKeyedLocker()

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[string]*keyedLock)}
}

// lock blocks until key is free and returns its release func. Entries are
// dropped once no caller holds or waits on them.
func (l *keyedLocker) lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &keyedLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *keyedLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
