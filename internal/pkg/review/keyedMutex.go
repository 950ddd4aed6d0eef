package review

import "sync"

// keyedMutex serializes work per key, different keys do not block each other
type keyedMutex struct {
	m       sync.Mutex
	entries map[string]*keyedEntry
}

type keyedEntry struct {
	m    sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[string]*keyedEntry)}
}

// Lock locks the key and returns the unlock func
func (km *keyedMutex) Lock(key string) func() {
	km.m.Lock()
	e, ok := km.entries[key]
	if !ok {
		e = &keyedEntry{}
		km.entries[key] = e
	}
	e.refs++
	km.m.Unlock()

	e.m.Lock()
	return func() {
		e.m.Unlock()
		km.m.Lock()
		e.refs--
		if e.refs == 0 {
			delete(km.entries, key)
		}
		km.m.Unlock()
	}
}

func (km *keyedMutex) size() int {
	km.m.Lock()
	defer km.m.Unlock()
	return len(km.entries)
}
