package record

import (
	"fmt"
	"strings"
)

// Modification is a delta: bindings that were added or changed, and keys that
// were removed. The values on the removed side are informational.
type Modification struct {
	Modified Snapshot
	Removed  Snapshot
}

// NewModification creates a modification from both sides.
func NewModification(modified, removed Snapshot) Modification {
	return Modification{Modified: modified, Removed: removed}
}

// IsEmpty reports whether the modification changes nothing.
func (m Modification) IsEmpty() bool {
	return m.Modified.IsEmpty() && m.Removed.IsEmpty()
}

// Overlap returns the keys present on both sides.
func (m Modification) Overlap() []AnyKey {
	var both []AnyKey
	for _, k := range m.Removed.Keys() {
		if m.Modified.Contains(k) {
			both = append(both, k)
		}
	}
	return both
}

// Validate rejects modifications that both modify and remove one identity.
// Apply itself tolerates such input and lets the modified side win.
func (m Modification) Validate() error {
	both := m.Overlap()
	if len(both) == 0 {
		return nil
	}
	ids := make([]string, len(both))
	for i, k := range both {
		ids[i] = k.ID()
	}
	return fmt.Errorf("%w: %s", ErrAmbiguousModification, strings.Join(ids, ", "))
}

// Keys returns every key named by either side.
func (m Modification) Keys() KeySet {
	var ks KeySet
	for _, k := range m.Modified.Keys() {
		_ = ks.Add(k)
	}
	for _, k := range m.Removed.Keys() {
		// A conflicting key on the removed side is still removed by identifier.
		_ = ks.Add(k)
	}
	return ks
}

// Apply merges the modified side with overwrite, then removes every key of
// the removed side that the modified side does not bind.
func (m Modification) Apply(b *Builder) *Builder {
	return b.Merge(m.Modified, true).RemoveAll(m.Removed, m.Modified)
}

// ApplyStorage is Apply over a raw storage.
func (m Modification) ApplyStorage(s *Storage) *Storage {
	m.Modified.Accept(&mergeVisitor{into: s, allowOverwrite: true})
	m.Removed.AcceptKeys(&removeVisitor{from: s, protect: m.Modified})
	return s
}
