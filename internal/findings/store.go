package findings

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Store keeps the findings of every scanned file. Operations on one file are
// serialized, different files proceed independently.
type Store struct {
	mu    sync.Mutex
	files map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	session uuid.UUID
	order   []Key
	byKey   map[Key]Finding
	// removed is set once the entry is dropped from Store.files.
	removed bool
}

func newEntry() *entry {
	return &entry{
		session: uuid.New(),
		byKey:   make(map[Key]Finding),
	}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{files: make(map[string]*entry)}
}

func (s *Store) lookup(file string, create bool) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.files[file]
	if !ok && create {
		e = newEntry()
		s.files[file] = e
	}
	return e
}

// acquire returns the locked live entry of file, creating it if needed. An
// entry that Remove dropped while the caller waited for it is skipped.
func (s *Store) acquire(file string) *entry {
	for {
		e := s.lookup(file, true)
		e.mu.Lock()
		if !e.removed {
			return e
		}
		e.mu.Unlock()
	}
}

// Clear discards the findings of file and starts a new scan session for it.
func (s *Store) Clear(file string) uuid.UUID {
	e := s.acquire(file)
	defer e.mu.Unlock()

	e.session = uuid.New()
	e.order = nil
	e.byKey = make(map[Key]Finding)
	return e.session
}

// Add stores f for file unless a finding with the same id and path is
// already there. It reports whether f was stored.
func (s *Store) Add(file string, f Finding) bool {
	e := s.acquire(file)
	defer e.mu.Unlock()

	key := f.Key()
	if _, exists := e.byKey[key]; exists {
		return false
	}
	e.byKey[key] = f
	e.order = append(e.order, key)
	return true
}

// Remove evicts all state kept for file. Adds racing with it land in a
// fresh entry.
func (s *Store) Remove(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.files[file]
	if !ok {
		return
	}
	delete(s.files, file)

	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
}

// List returns the findings of file in insertion order.
func (s *Store) List(file string) []Finding {
	e := s.lookup(file, false)
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Finding, 0, len(e.order))
	for _, key := range e.order {
		out = append(out, e.byKey[key])
	}
	return out
}

// Get returns the finding stored for file under id and path.
func (s *Store) Get(file, id, path string) (Finding, bool) {
	e := s.lookup(file, false)
	if e == nil {
		return Finding{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	f, ok := e.byKey[Key{ID: id, Path: path}]
	return f, ok
}

// Session returns the id of the current scan session of file.
func (s *Store) Session(file string) (uuid.UUID, bool) {
	e := s.lookup(file, false)
	if e == nil {
		return uuid.Nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session, true
}

// Files lists the files with state in the store, sorted.
func (s *Store) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]string, 0, len(s.files))
	for file := range s.files {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// CountAtLeast returns how many findings of all files have a severity of at
// least min.
func (s *Store) CountAtLeast(min Severity) int {
	n := 0
	for _, file := range s.Files() {
		for _, f := range s.List(file) {
			if f.Severity >= min {
				n++
			}
		}
	}
	return n
}

// Retain drops the findings of file for which keep returns false and
// reports how many were dropped.
func (s *Store) Retain(file string, keep func(Finding) bool) int {
	e := s.lookup(file, false)
	if e == nil {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	order := e.order[:0]
	dropped := 0
	for _, key := range e.order {
		if keep(e.byKey[key]) {
			order = append(order, key)
			continue
		}
		delete(e.byKey, key)
		dropped++
	}
	e.order = order
	return dropped
}
