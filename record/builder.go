package record

// Builder accumulates bindings and produces a Snapshot.
//
// A builder owns a primary storage and an optional defaults storage. Defaults
// are consulted only by Build, for identities the primary does not bind, so an
// explicit value is never shadowed by a default.
//
// Builders are not safe for concurrent use.
type Builder struct {
	primary  *Storage
	defaults *Storage
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithDefaults seeds the builder's defaults from an explicit registry.
func WithDefaults(d *Defaults) BuilderOption {
	return func(b *Builder) {
		if d == nil {
			return
		}
		b.defaults.Merge(d.s, true)
	}
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		primary:  NewStorage(),
		defaults: NewStorage(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Set applies bindings to the primary storage.
func (b *Builder) Set(bindings ...Binding) *Builder {
	b.primary.Set(bindings...)
	return b
}

// SetDefault records fallback values applied at Build for absent keys.
func (b *Builder) SetDefault(bindings ...Binding) *Builder {
	b.defaults.Set(bindings...)
	return b
}

// Remove deletes keys from the primary storage.
func (b *Builder) Remove(keys ...AnyKey) *Builder {
	b.primary.Remove(keys...)
	return b
}

// Clear drops every primary binding. Defaults are kept.
func (b *Builder) Clear() *Builder {
	b.primary.Clear()
	return b
}

// Contains reports whether k is explicitly bound.
func (b *Builder) Contains(k AnyKey) bool {
	return b.primary.Contains(k)
}

// Len returns the number of explicit bindings.
func (b *Builder) Len() int {
	return b.primary.Len()
}

// Merge copies every binding of other through the visitor. Existing bindings
// are replaced only when allowOverwrite is true.
func (b *Builder) Merge(other Snapshot, allowOverwrite bool) *Builder {
	other.Accept(&mergeVisitor{into: b.primary, allowOverwrite: allowOverwrite})
	return b
}

// MergeKeys copies, with overwrite, only the bindings of source whose key is
// in keys. It is used to split one snapshot between the attributes a primary
// backend owns and those handled by a secondary collaborator.
func (b *Builder) MergeKeys(keys KeySet, source Snapshot) *Builder {
	source.Accept(&mergeVisitor{into: b.primary, allowOverwrite: true, allow: &keys})
	return b
}

// RemoveAll deletes every key bound in removed, except those bound in keep.
func (b *Builder) RemoveAll(removed Snapshot, keep Snapshot) *Builder {
	removed.AcceptKeys(&removeVisitor{from: b.primary, protect: keep})
	return b
}

// Build returns an immutable snapshot. Defaults fill absent identities with a
// direct non-overwrite storage merge.
func (b *Builder) Build() Snapshot {
	out := b.primary.Clone()
	if b.defaults.Len() > 0 {
		out.Merge(b.defaults, false)
	}
	return Snapshot{s: out}
}
