package app

import "sync"

// dirLocks hands out one mutex per directory. Entries are dropped once no
// caller holds or waits for them.
type dirLocks struct {
	mu    sync.Mutex
	locks map[string]*dirLock
}

type dirLock struct {
	mu   sync.Mutex
	refs int
}

func newDirLocks() *dirLocks {
	return &dirLocks{locks: make(map[string]*dirLock)}
}

// lock blocks until dir is free and returns the matching unlock.
func (d *dirLocks) lock(dir string) func() {
	d.mu.Lock()
	l, ok := d.locks[dir]
	if !ok {
		l = &dirLock{}
		d.locks[dir] = l
	}
	l.refs++
	d.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		d.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(d.locks, dir)
		}
		d.mu.Unlock()
	}
}

func (d *dirLocks) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.locks)
}
