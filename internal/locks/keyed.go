// Package locks provides a mutex keyed by string, used to serialise work on
// the same account across goroutines.
package locks

import (
	"slices"
	"sync"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Keyed hands out one mutex per key. Entries are dropped once no goroutine
// holds or waits for them. The zero value is ready to use.
type Keyed struct {
	mu sync.Mutex
	m  map[string]*entry
}

// Lock acquires the mutexes of all non-empty keys in sorted order and
// returns a function releasing them. Duplicate keys are locked once.
func (k *Keyed) Lock(keys ...string) (unlock func()) {
	ks := make([]string, 0, len(keys))
	for _, key := range keys {
		if key != "" {
			ks = append(ks, key)
		}
	}
	slices.Sort(ks)
	ks = slices.Compact(ks)

	held := make([]*entry, 0, len(ks))
	for _, key := range ks {
		e := k.acquire(key)
		e.mu.Lock()
		held = append(held, e)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].mu.Unlock()
				k.release(ks[i])
			}
		})
	}
}

func (k *Keyed) acquire(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.m == nil {
		k.m = make(map[string]*entry)
	}
	e, ok := k.m[key]
	if !ok {
		e = &entry{}
		k.m[key] = e
	}
	e.refs++
	return e
}

func (k *Keyed) release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e := k.m[key]
	e.refs--
	if e.refs == 0 {
		delete(k.m, key)
	}
}

// Len reports how many keys currently have holders or waiters.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.m)
}
