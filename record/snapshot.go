package record

// Snapshot is an immutable bundle of key bindings for one account.
//
// The same type serves as full account details and as either side of a
// Modification. The zero value is a valid empty snapshot.
type Snapshot struct {
	s *Storage
}

// Empty returns a snapshot without bindings.
func Empty() Snapshot {
	return Snapshot{}
}

func (s Snapshot) storage() *Storage {
	return s.s
}

// Len returns the number of bindings.
func (s Snapshot) Len() int {
	return s.s.Len()
}

// IsEmpty reports whether the snapshot has no bindings.
func (s Snapshot) IsEmpty() bool {
	return s.Len() == 0
}

// Keys returns the bound keys ordered by identifier.
func (s Snapshot) Keys() []AnyKey {
	return s.s.Keys()
}

// KeySet returns the bound keys as a KeySet.
func (s Snapshot) KeySet() KeySet {
	var ks KeySet
	for _, k := range s.Keys() {
		// Keys from one storage never conflict.
		_ = ks.Add(k)
	}
	return ks
}

// Contains reports whether k is bound.
func (s Snapshot) Contains(k AnyKey) bool {
	return s.s.Contains(k)
}

// Accept calls v once per binding, in identifier order, after restoring the
// static value type through the key's accept thunk.
func (s Snapshot) Accept(v Visitor) {
	if s.s == nil {
		return
	}
	for _, id := range s.s.ids() {
		b := s.s.entries[id]
		b.key.accept(v, b.value)
	}
}

// AcceptKeys calls v once per bound key, in identifier order.
func (s Snapshot) AcceptKeys(v KeyVisitor) {
	for _, k := range s.Keys() {
		v.VisitKey(k)
	}
}

// Equal reports whether both snapshots bind the same identifiers to equal values.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s.s == nil {
		return true
	}
	for id, b := range s.s.entries {
		ob, ok := other.s.lookup(id)
		if !ok || ob.value != b.value {
			return false
		}
	}
	return true
}

// Filter returns the bindings whose key identifier is in keys.
func (s Snapshot) Filter(keys KeySet) Snapshot {
	out := NewStorage()
	if s.s == nil {
		return out.Snapshot()
	}
	for id, b := range s.s.entries {
		if keys.ContainsID(id) {
			out.entries[id] = b
		}
	}
	return Snapshot{s: out}
}

// MissingRequired returns the required keys of keys that s does not bind.
func (s Snapshot) MissingRequired(keys KeySet) []AnyKey {
	var missing []AnyKey
	for _, k := range keys.Keys() {
		if k.Required() && !s.Contains(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// Builder returns a builder seeded with a copy of the snapshot.
func (s Snapshot) Builder() *Builder {
	b := NewBuilder()
	b.primary.Merge(s.s, true)
	return b
}

// Storage returns a mutable copy of the bindings.
func (s Snapshot) Storage() *Storage {
	return s.s.Clone()
}
