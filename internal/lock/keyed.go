// Package lock provides exclusive per-key locks used to serialize work on a
// single account.
package lock

import (
	"context"
	"sort"
	"sync"
)

// Normalize sorts and de-duplicates keys so that every caller acquires them in
// the same order.
func Normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type keyedEntry struct {
	sem  chan struct{}
	refs int
}

// Keyed is an in-process lock table. Entries are dropped once no caller holds
// or waits on them.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

func NewKeyed() *Keyed {
	return &Keyed{entries: make(map[string]*keyedEntry)}
}

func (k *Keyed) ref(key string) *keyedEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *Keyed) unref(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e := k.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Acquire locks every key or none. It waits until the keys are free or ctx is
// done. The returned release func is safe to call more than once.
func (k *Keyed) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = Normalize(keys)

	type heldKey struct {
		key   string
		entry *keyedEntry
	}
	held := make([]heldKey, 0, len(keys))
	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i].entry.sem
			k.unref(held[i].key)
		}
		held = held[:0]
	}

	for _, key := range keys {
		e := k.ref(key)
		select {
		case e.sem <- struct{}{}:
			held = append(held, heldKey{key: key, entry: e})
		case <-ctx.Done():
			k.unref(key)
			releaseHeld()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(releaseHeld) }, nil
}

// Held reports how many keys currently have holders or waiters.
func (k *Keyed) Held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
