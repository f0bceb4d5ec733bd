package usecase

import "sync"

// leadLocker serializes turn pipelines per lead id, enforcing "at most one
// active turn per lead". Two concurrent turns against the same lead would
// otherwise race on the qualification/history save at finalize.
type leadLocker struct {
	mu    sync.Mutex
	locks map[string]*leadLock
}

type leadLock struct {
	sync.Mutex
	refs int
}

func newLeadLocker() *leadLocker {
	return &leadLocker{locks: make(map[string]*leadLock)}
}

func (l *leadLocker) Acquire(leadID string) *leadLock {
	l.mu.Lock()
	lk, ok := l.locks[leadID]
	if !ok {
		lk = &leadLock{}
		l.locks[leadID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.Lock()
	return lk
}

func (l *leadLocker) Release(leadID string, lk *leadLock) {
	lk.Unlock()

	l.mu.Lock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, leadID)
	}
	l.mu.Unlock()
}
