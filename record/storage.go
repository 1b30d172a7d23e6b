package record

import "sort"

type binding struct {
	key   AnyKey
	value any
}

// Storage is the mutable overwrite-map from key identity to erased value.
//
// Contract:
//   - Values enter only through Bindings, so a bound value always has the
//     key's declared type.
//   - Concurrency: Storage is not safe for concurrent use; callers serialize.
type Storage struct {
	entries map[string]binding
}

// NewStorage creates an empty storage.
func NewStorage() *Storage {
	return &Storage{entries: make(map[string]binding)}
}

// Set applies bindings in order. Removal bindings delete their key.
func (s *Storage) Set(bindings ...Binding) *Storage {
	for _, b := range bindings {
		if b.key == nil {
			panic(ErrNilKey.Error())
		}
		if b.remove {
			s.remove(b.key.ID())
			continue
		}
		s.put(b.key, b.value)
	}
	return s
}

// Remove deletes the given keys. Absent keys are ignored.
func (s *Storage) Remove(keys ...AnyKey) *Storage {
	for _, k := range keys {
		if k == nil {
			continue
		}
		s.remove(k.ID())
	}
	return s
}

// RemoveIDs deletes bindings by raw identifier.
func (s *Storage) RemoveIDs(ids ...string) *Storage {
	for _, id := range ids {
		s.remove(id)
	}
	return s
}

// Clear removes every binding.
func (s *Storage) Clear() *Storage {
	s.entries = make(map[string]binding)
	return s
}

// Contains reports whether k is bound.
func (s *Storage) Contains(k AnyKey) bool {
	if k == nil {
		return false
	}
	return s.contains(k.ID())
}

// Len returns the number of bindings.
func (s *Storage) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Keys returns the bound keys ordered by identifier.
func (s *Storage) Keys() []AnyKey {
	if s == nil {
		return nil
	}
	ids := s.ids()
	keys := make([]AnyKey, len(ids))
	for i, id := range ids {
		keys[i] = s.entries[id].key
	}
	return keys
}

// Merge copies every binding of other into s. A binding already present in s
// is replaced only when allowOverwrite is true.
//
// This is the single primitive behind builder merges, default application
// and cache reconciliation.
func (s *Storage) Merge(other *Storage, allowOverwrite bool) *Storage {
	if other == nil {
		return s
	}
	for id, b := range other.entries {
		if _, exists := s.entries[id]; exists && !allowOverwrite {
			continue
		}
		s.entries[id] = b
	}
	return s
}

// Clone returns an independent copy. Values are shared; they are
// comparable value types and never mutated in place.
func (s *Storage) Clone() *Storage {
	out := NewStorage()
	if s == nil {
		return out
	}
	for id, b := range s.entries {
		out.entries[id] = b
	}
	return out
}

// Snapshot returns an immutable copy of the current bindings.
func (s *Storage) Snapshot() Snapshot {
	return Snapshot{s: s.Clone()}
}

func (s *Storage) put(k AnyKey, value any) {
	if s.entries == nil {
		s.entries = make(map[string]binding)
	}
	s.entries[k.ID()] = binding{key: k, value: value}
}

func (s *Storage) remove(id string) {
	delete(s.entries, id)
}

func (s *Storage) lookup(id string) (binding, bool) {
	if s == nil {
		return binding{}, false
	}
	b, ok := s.entries[id]
	return b, ok
}

func (s *Storage) contains(id string) bool {
	_, ok := s.lookup(id)
	return ok
}

func (s *Storage) ids() []string {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
