// Package sourcestore holds script source keyed by resource name, the
// backing store behind the debugger's client-source injection loop:
// WAIT_FOR_SOURCE asks the client for a resource, CLIENT_SOURCE /
// CLIENT_SOURCE_PART deliver it, and the debugger session records each
// completed transfer here under its resource name.
package sourcestore

import (
	"fmt"
	"sync"
)

// Store is a resource-name -> source-bytes map, safe for concurrent use
// even though the debugger's own command loop is single-threaded, since
// cmd/jdb-demo's optional fsnotify watcher feeds it from a separate
// goroutine.
type Store struct {
	mu        sync.RWMutex
	resources map[string][]byte
	order     []string // insertion order, for deterministic listing
}

// New creates an empty Store.
func New() *Store {
	return &Store{resources: make(map[string][]byte)}
}

// Put stores (or replaces) the source for a resource name.
func (s *Store) Put(name string, source []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.resources[name]; !exists {
		s.order = append(s.order, name)
	}
	cp := make([]byte, len(source))
	copy(cp, source)
	s.resources[name] = cp
}

// Get returns the source for name and whether it was found.
func (s *Store) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.resources[name]
	if !ok {
		return nil, false
	}
	cp := make([]byte, len(src))
	copy(cp, src)
	return cp, true
}

// Delete removes a resource, e.g. after a CONTEXT_RESET.
func (s *Store) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[name]; !ok {
		return
	}
	delete(s.resources, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Names returns every known resource name in insertion order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len reports how many resources are currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.resources)
}

// Clear empties the store, used when CONTEXT_RESET discards everything
// injected so far.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = make(map[string][]byte)
	s.order = nil
}

// MustGet is a convenience for callers (such as tests) that treat a
// missing resource as a programming error rather than a recoverable one.
func (s *Store) MustGet(name string) []byte {
	src, ok := s.Get(name)
	if !ok {
		panic(fmt.Sprintf("sourcestore: resource %q not found", name))
	}
	return src
}
