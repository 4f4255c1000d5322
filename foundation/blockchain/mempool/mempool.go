// Package mempool maintains the pool of payloads waiting to be mined.
package mempool

import (
	"sort"
	"sync"
)

// Entry is a payload waiting to be mined, keyed by its submission sequence.
type Entry struct {
	Seq  uint64 `json:"seq"`
	Data string `json:"data"`
}

// Mempool represents a cache of payloads organized by submission sequence.
// The same payload can be submitted more than once.
type Mempool struct {
	mu   sync.RWMutex
	pool map[uint64]string
	next uint64
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[uint64]string),
	}
}

// Count returns the current number of payloads in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds a payload to the mempool and returns its entry.
func (mp *Mempool) Upsert(data string) Entry {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.next++
	mp.pool[mp.next] = data

	return Entry{Seq: mp.next, Data: data}
}

// Delete removes an entry from the mempool.
func (mp *Mempool) Delete(entry Entry) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, entry.Seq)
}

// Oldest returns the entry that has been waiting the longest.
func (mp *Mempool) Oldest() (Entry, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	var oldest Entry
	var found bool
	for seq, data := range mp.pool {
		if !found || seq < oldest.Seq {
			oldest = Entry{Seq: seq, Data: data}
			found = true
		}
	}

	return oldest, found
}

// Copy returns the pending entries in submission order.
func (mp *Mempool) Copy() []Entry {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	entries := make([]Entry, 0, len(mp.pool))
	for seq, data := range mp.pool {
		entries = append(entries, Entry{Seq: seq, Data: data})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })

	return entries
}
