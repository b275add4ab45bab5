// Package cache provides an in-memory, TTL-checked store for media entities,
// addressable by numeric id or by lowercased name.
package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultMaxAge is how long an entry stays fresh: 6 hours.
const DefaultMaxAge = 21600 * time.Second

// Entity is the minimal contract stored values must satisfy.
type Entity interface {
	EntityID() int
	EntityName() string
}

// entry wraps a stored value with its creation timestamp. Entries are
// immutable once stored; a repeated Put for the same id replaces the entry.
type entry[T Entity] struct {
	value    T
	storedAt time.Time
}

// Store is a process-lifetime cache. It is safe for concurrent use: each
// Put/lookup holds the mutex only for its own index mutations, so unrelated
// lookups never wait on a whole request lifecycle.
//
// Capacity is unbounded and stale entries are not evicted, only treated as
// absent on lookup. Fine for the intended workload (a bounded universe of
// search queries); a size-bounded policy would be needed before pointing
// this at arbitrary input.
type Store[T Entity] struct {
	mu       sync.RWMutex
	byID     map[int]entry[T]
	nameToID map[string]int

	maxAge time.Duration
	now    func() time.Time
}

// Option configures a Store.
type Option func(*options)

type options struct {
	maxAge time.Duration
	now    func() time.Time
}

// WithMaxAge sets the freshness window for entries.
func WithMaxAge(maxAge time.Duration) Option {
	return func(o *options) {
		if maxAge > 0 {
			o.maxAge = maxAge
		}
	}
}

// WithClock overrides the time source. Used in tests to age entries without
// sleeping.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates an empty Store.
func New[T Entity](opts ...Option) *Store[T] {
	o := options{
		maxAge: DefaultMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store[T]{
		byID:     make(map[int]entry[T]),
		nameToID: make(map[string]int),
		maxAge:   o.maxAge,
		now:      o.now,
	}
}

// Put records the entity under its id and records the id under the
// lowercased name, stamping the current time. Any prior entry for the id is
// replaced.
func (s *Store[T]) Put(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[value.EntityID()] = entry[T]{value: value, storedAt: s.now()}
	if name := value.EntityName(); name != "" {
		s.nameToID[strings.ToLower(name)] = value.EntityID()
	}
}

// ByID returns the fresh entry for id, if any.
func (s *Store[T]) ByID(id int) (T, bool) {
	s.mu.RLock()
	ent, ok := s.byID[id]
	s.mu.RUnlock()

	if !ok || s.expired(ent) {
		var zero T
		return zero, false
	}
	return ent.value, true
}

// ByName returns the fresh entry recorded under the given name, matched
// case-insensitively.
func (s *Store[T]) ByName(name string) (T, bool) {
	s.mu.RLock()
	id, ok := s.nameToID[strings.ToLower(name)]
	var ent entry[T]
	if ok {
		ent, ok = s.byID[id]
	}
	s.mu.RUnlock()

	if !ok || s.expired(ent) {
		var zero T
		return zero, false
	}
	return ent.value, true
}

// Lookup resolves a key that may be either a numeric id or a name: keys that
// parse as integers go through the id index, everything else through the
// name index.
func (s *Store[T]) Lookup(key string) (T, bool) {
	if id, err := strconv.Atoi(key); err == nil {
		return s.ByID(id)
	}
	return s.ByName(key)
}

// Len returns the number of stored entries, stale ones included.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *Store[T]) expired(ent entry[T]) bool {
	return s.now().Sub(ent.storedAt) >= s.maxAge
}
