package record

import (
	"fmt"
	"maps"
	"slices"
)

// KeySet is an ordered collection of keys, unique by identifier.
//
// A KeySet is what decoding needs to turn wire identifiers back into typed
// keys, and what allow-list merges use to split a snapshot between owners.
// The zero value is an empty set ready for use. Copies are independent:
// Add on a copy never changes the set it was copied from.
type KeySet struct {
	order  []AnyKey
	byID   map[string]AnyKey
	legacy map[string]AnyKey
	owner  *KeySet // the only set allowed to write these maps in place
}

// NewKeySet creates a set from keys. Key sets are declared at build time, so
// an identifier conflict panics.
func NewKeySet(keys ...AnyKey) KeySet {
	var ks KeySet
	for _, k := range keys {
		if err := ks.Add(k); err != nil {
			panic(err.Error())
		}
	}
	return ks
}

// Add inserts k. Adding the same key twice is a no-op; adding a different key
// under an identifier (or legacy identifier) already taken returns ErrKeyConflict.
func (ks *KeySet) Add(k AnyKey) error {
	if k == nil {
		return ErrNilKey
	}
	id := k.ID()
	if existing, ok := ks.byID[id]; ok {
		if existing == k {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrKeyConflict, id)
	}
	if existing, ok := ks.legacy[id]; ok && existing != k {
		return fmt.Errorf("%w: %q is a legacy identifier of %q", ErrKeyConflict, id, existing.ID())
	}
	for _, legacyID := range k.LegacyIDs() {
		if existing, ok := ks.byID[legacyID]; ok && existing != k {
			return fmt.Errorf("%w: legacy %q of %q", ErrKeyConflict, legacyID, id)
		}
		if existing, ok := ks.legacy[legacyID]; ok && existing != k {
			return fmt.Errorf("%w: legacy %q of %q", ErrKeyConflict, legacyID, id)
		}
	}

	ks.own()
	ks.byID[id] = k
	for _, legacyID := range k.LegacyIDs() {
		ks.legacy[legacyID] = k
	}
	ks.order = append(ks.order, k)
	return nil
}

// own gives ks private maps and order before its first write, so a set
// copied by value never writes into storage shared with its source.
func (ks *KeySet) own() {
	if ks.owner == ks {
		return
	}
	byID := make(map[string]AnyKey, len(ks.byID)+1)
	maps.Copy(byID, ks.byID)
	legacy := make(map[string]AnyKey, len(ks.legacy))
	maps.Copy(legacy, ks.legacy)
	ks.byID, ks.legacy = byID, legacy
	ks.order = slices.Clone(ks.order)
	ks.owner = ks
}

// Len returns the number of keys.
func (ks KeySet) Len() int {
	return len(ks.order)
}

// Keys returns the keys in insertion order.
func (ks KeySet) Keys() []AnyKey {
	out := make([]AnyKey, len(ks.order))
	copy(out, ks.order)
	return out
}

// IDs returns the identifiers in insertion order.
func (ks KeySet) IDs() []string {
	out := make([]string, len(ks.order))
	for i, k := range ks.order {
		out[i] = k.ID()
	}
	return out
}

// Contains reports whether k is in the set.
func (ks KeySet) Contains(k AnyKey) bool {
	if k == nil {
		return false
	}
	return ks.ContainsID(k.ID())
}

// ContainsID reports whether a key with identifier id is in the set.
func (ks KeySet) ContainsID(id string) bool {
	_, ok := ks.byID[id]
	return ok
}

// Lookup returns the key with identifier id.
func (ks KeySet) Lookup(id string) (AnyKey, bool) {
	k, ok := ks.byID[id]
	return k, ok
}

// Resolve looks up id as a current identifier first, then as a legacy one.
func (ks KeySet) Resolve(id string) (AnyKey, bool) {
	if k, ok := ks.byID[id]; ok {
		return k, true
	}
	k, ok := ks.legacy[id]
	return k, ok
}

// Union returns a new set with the keys of ks followed by those of other.
func (ks KeySet) Union(other KeySet) (KeySet, error) {
	var out KeySet
	for _, k := range ks.order {
		if err := out.Add(k); err != nil {
			return KeySet{}, err
		}
	}
	for _, k := range other.order {
		if err := out.Add(k); err != nil {
			return KeySet{}, err
		}
	}
	return out, nil
}
