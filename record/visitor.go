package record

// Visitor is the capability invoked for each binding of a snapshot.
//
// The value passed to Visit has already been downcast to the key's declared
// type by the key itself, so implementations may type-switch on it or use
// VisitAs for a statically typed call site.
type Visitor interface {
	Visit(key AnyKey, value any)
}

// KeyVisitor is the key-only variant, used for removal sets.
type KeyVisitor interface {
	VisitKey(key AnyKey)
}

// VisitorFunc adapts a function to Visitor.
type VisitorFunc func(key AnyKey, value any)

// Visit calls f(key, value).
func (f VisitorFunc) Visit(key AnyKey, value any) { f(key, value) }

// KeyVisitorFunc adapts a function to KeyVisitor.
type KeyVisitorFunc func(key AnyKey)

// VisitKey calls f(key).
func (f KeyVisitorFunc) VisitKey(key AnyKey) { f(key) }

// VisitAs invokes fn when key is a *Key[V]. It reports whether fn ran.
func VisitAs[V comparable](key AnyKey, value any, fn func(*Key[V], V)) bool {
	k, ok := key.(*Key[V])
	if !ok {
		return false
	}
	fn(k, k.cast(value))
	return true
}

// mergeVisitor writes visited bindings into a storage.
type mergeVisitor struct {
	into           *Storage
	allowOverwrite bool
	allow          *KeySet
}

func (m *mergeVisitor) Visit(key AnyKey, value any) {
	if m.allow != nil && !m.allow.ContainsID(key.ID()) {
		return
	}
	if !m.allowOverwrite && m.into.contains(key.ID()) {
		return
	}
	m.into.put(key, value)
}

// removeVisitor deletes visited keys from a storage unless protected.
type removeVisitor struct {
	from    *Storage
	protect Snapshot
}

func (r *removeVisitor) VisitKey(key AnyKey) {
	if r.protect.Contains(key) {
		return
	}
	r.from.remove(key.ID())
}

var (
	_ Visitor    = (*mergeVisitor)(nil)
	_ KeyVisitor = (*removeVisitor)(nil)
	_ Visitor    = VisitorFunc(nil)
	_ KeyVisitor = KeyVisitorFunc(nil)
)
