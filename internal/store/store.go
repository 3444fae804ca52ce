package store

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"pastebin/internal/metrics"
)

// Store is a capacity-bounded, insertion-ordered paste store.
//
// Design principles:
// - A single RWMutex guards the whole ordered index; Get takes the read lock,
//   Put takes the write lock for insert-then-evict as one critical section.
// - Eviction is strict FIFO by first insertion. Overwriting an existing id
//   replaces its content but keeps its original eviction slot, so a
//   refreshed paste is still evicted on the schedule of its first write.
// - The store never holds more than capacity entries at any point another
//   goroutine can observe.
type Store struct {
	mu       sync.RWMutex
	order    *list.List // *Entry, oldest at the front
	index    map[string]*list.Element
	capacity int
	metrics  *metrics.Registry
	now      func() time.Time // injectable for deterministic tests
}

// New creates a Store holding at most capacity entries. A capacity of zero
// is valid and keeps the store permanently empty.
func New(capacity int, metricsRegistry *metrics.Registry) *Store {
	if capacity < 0 {
		panic(fmt.Sprintf("store: negative capacity %d", capacity))
	}
	if metricsRegistry == nil {
		metricsRegistry = metrics.NewRegistry()
	}

	return &Store{
		order:    list.New(),
		index:    make(map[string]*list.Element),
		capacity: capacity,
		metrics:  metricsRegistry,
		now:      time.Now,
	}
}

// Put associates id with content, evicting the oldest entries if the store
// grows past capacity. Overwrites and evictions are silent.
//
// id must be non-empty; an empty id is a caller bug and panics.
// Callers must not modify content after calling Put.
func (s *Store) Put(id string, content []byte) {
	if id == "" {
		panic("store: Put called with empty id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.Inc(metrics.PastesStoredTotal)

	if el, ok := s.index[id]; ok {
		e := el.Value.(*Entry)
		e.Content = content
		e.StoredAt = s.now()
		s.metrics.Inc(metrics.PastesOverwrittenTotal)
		return
	}

	s.index[id] = s.order.PushBack(&Entry{
		ID:       id,
		Content:  content,
		StoredAt: s.now(),
	})
	s.metrics.Inc(metrics.PastesLive)

	s.evictLocked()
}

// evictLocked pops entries off the front until the capacity bound holds.
// s.mu must be held for writing.
func (s *Store) evictLocked() {
	evicted := 0
	for s.order.Len() > s.capacity {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.index, oldest.Value.(*Entry).ID)
		evicted++
	}

	if evicted > 0 {
		s.metrics.Add(metrics.PastesEvictedTotal, int64(evicted))
		s.metrics.Add(metrics.PastesLive, -int64(evicted))
	}
}

// Get returns the content stored under id.
//
// Behavior:
// - Returns (content, true) if id is live
// - Returns (nil, false) if id was never stored or has been evicted
// - Never changes eviction order
func (s *Store) Get(id string) ([]byte, bool) {
	s.metrics.Inc(metrics.PasteFetchesTotal)

	s.mu.RLock()
	el, ok := s.index[id]
	var content []byte
	if ok {
		content = el.Value.(*Entry).Content
	}
	s.mu.RUnlock()

	if !ok {
		s.metrics.Inc(metrics.PasteMissesTotal)
		return nil, false
	}
	return content, true
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}

// Capacity returns the configured maximum entry count.
func (s *Store) Capacity() int {
	return s.capacity
}

// Entries returns a snapshot of all live entries, oldest first.
// Used by admin APIs and tests.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		out = append(out, *el.Value.(*Entry))
	}
	return out
}
