package record

import (
	"fmt"
	"reflect"
	"strings"
)

// InitialValue describes how an attribute is pre-populated before user input.
type InitialValue int

const (
	// InitialEmpty forces explicit input; there is no sensible default.
	InitialEmpty InitialValue = iota
	// InitialDefault marks the key's default value as a valid out-of-the-box choice.
	InitialDefault
)

// String returns the string representation of the policy.
func (iv InitialValue) String() string {
	switch iv {
	case InitialEmpty:
		return "empty"
	case InitialDefault:
		return "default"
	default:
		return "unknown"
	}
}

// AnyKey is the type-erased view of a Key.
//
// Only *Key[V] implements AnyKey; the unexported methods are the per-key
// thunks that restore the static value type for visitors and codecs.
type AnyKey interface {
	// ID returns the stable identifier used as field name on the wire.
	ID() string

	// Name returns the display name. UI only.
	Name() string

	// Category returns the display category. UI only.
	Category() string

	// Required reports whether the attribute must be present in full details.
	Required() bool

	// InitialValue returns the initial-value policy.
	InitialValue() InitialValue

	// Transient reports whether the key is process-local and never serialized.
	Transient() bool

	// LegacyIDs returns previous identifiers accepted when decoding.
	LegacyIDs() []string

	// ValueType returns a printable name of the value type.
	ValueType() string

	accept(v Visitor, value any)
	encode(c Codec, value any) ([]byte, error)
	decode(c Codec, data []byte) (any, error)
	defaultValue() (any, bool)
}

// KeyOption configures key metadata at definition time.
type KeyOption func(*keyMeta)

type keyMeta struct {
	id        string
	name      string
	category  string
	required  bool
	transient bool
	legacy    []string
}

// WithID overrides the wire identifier, e.g. to stay compatible with
// payloads written under an earlier name.
func WithID(id string) KeyOption {
	return func(m *keyMeta) { m.id = id }
}

// WithDisplayName sets the human readable name.
func WithDisplayName(name string) KeyOption {
	return func(m *keyMeta) { m.name = name }
}

// WithCategory sets the display category.
func WithCategory(category string) KeyOption {
	return func(m *keyMeta) { m.category = category }
}

// Required marks the key as mandatory in full account details.
func Required() KeyOption {
	return func(m *keyMeta) { m.required = true }
}

// Transient marks the key as process-local. Transient keys are never encoded.
func Transient() KeyOption {
	return func(m *keyMeta) { m.transient = true }
}

// WithLegacyIDs registers identifiers that decode to this key.
func WithLegacyIDs(ids ...string) KeyOption {
	return func(m *keyMeta) { m.legacy = append(m.legacy, ids...) }
}

// Key is a typed attribute descriptor.
//
// Keys are declared once, usually as package-level variables, and compared by
// identifier. The zero value is not usable; construct keys with NewKey.
// V must be a concrete type: snapshots compare values with ==, which panics
// for interface values holding slices or maps.
type Key[V comparable] struct {
	meta       keyMeta
	def        V
	hasDefault bool
}

// NewKey creates a key whose identifier defaults to name.
// It panics if name is empty or V is an interface type, since keys are
// declared at build time.
func NewKey[V comparable](name string, opts ...KeyOption) *Key[V] {
	name = strings.TrimSpace(name)
	if name == "" {
		panic("record: key name is required")
	}
	if t := reflect.TypeFor[V](); t.Kind() == reflect.Interface {
		panic(fmt.Sprintf("record: key %q has interface value type %s", name, t))
	}
	meta := keyMeta{id: name, name: name}
	for _, opt := range opts {
		opt(&meta)
	}
	if strings.TrimSpace(meta.id) == "" {
		panic(fmt.Sprintf("record: key %q has an empty identifier", name))
	}
	return &Key[V]{meta: meta}
}

// WithDefault sets the default value and switches the initial-value policy to
// InitialDefault. It returns the key for chaining at declaration.
func (k *Key[V]) WithDefault(v V) *Key[V] {
	k.def = v
	k.hasDefault = true
	return k
}

func (k *Key[V]) ID() string        { return k.meta.id }
func (k *Key[V]) Name() string      { return k.meta.name }
func (k *Key[V]) Category() string  { return k.meta.category }
func (k *Key[V]) Required() bool    { return k.meta.required }
func (k *Key[V]) Transient() bool   { return k.meta.transient }
func (k *Key[V]) ValueType() string { return reflect.TypeFor[V]().String() }

func (k *Key[V]) LegacyIDs() []string {
	out := make([]string, len(k.meta.legacy))
	copy(out, k.meta.legacy)
	return out
}

func (k *Key[V]) InitialValue() InitialValue {
	if k.hasDefault {
		return InitialDefault
	}
	return InitialEmpty
}

// Default returns the declared default value, if any.
func (k *Key[V]) Default() (V, bool) {
	return k.def, k.hasDefault
}

// Bind produces a binding of v to this key.
func (k *Key[V]) Bind(v V) Binding {
	return Binding{key: k, value: v}
}

// BindOptional binds *v, or produces a removal binding when v is nil.
func (k *Key[V]) BindOptional(v *V) Binding {
	if v == nil {
		return Binding{key: k, remove: true}
	}
	return Binding{key: k, value: *v}
}

// Get returns the value bound to this key in s.
func (k *Key[V]) Get(s Snapshot) (V, bool) {
	b, ok := s.storage().lookup(k.meta.id)
	if !ok {
		var zero V
		return zero, false
	}
	return k.cast(b.value), true
}

// Value returns the value bound to this key in s.
//
// Reading an absent required key is a broken producer contract and panics.
// An absent optional key yields its default, or the zero value.
func (k *Key[V]) Value(s Snapshot) V {
	if v, ok := k.Get(s); ok {
		return v
	}
	if k.meta.required {
		panic(fmt.Sprintf("record: required key %q is absent", k.meta.id))
	}
	return k.def
}

// In reports whether s binds this key.
func (k *Key[V]) In(s Snapshot) bool {
	return s.storage().contains(k.meta.id)
}

// cast performs the single checked downcast from the erased value.
// A mismatch means the storage invariant was broken and is not recoverable.
func (k *Key[V]) cast(value any) V {
	v, ok := value.(V)
	if !ok {
		panic(fmt.Sprintf("record: key %q bound to %T, want %s", k.meta.id, value, k.ValueType()))
	}
	return v
}

func (k *Key[V]) accept(v Visitor, value any) {
	v.Visit(k, k.cast(value))
}

func (k *Key[V]) encode(c Codec, value any) ([]byte, error) {
	return c.Marshal(k.cast(value))
}

func (k *Key[V]) decode(c Codec, data []byte) (any, error) {
	var v V
	if err := c.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (k *Key[V]) defaultValue() (any, bool) {
	if !k.hasDefault {
		return nil, false
	}
	return k.def, true
}

// String returns the key identifier.
func (k *Key[V]) String() string {
	return k.meta.id
}

// Binding pairs a key with a value, or marks the key for removal.
// Bindings are produced by Key.Bind so the value type always matches.
type Binding struct {
	key    AnyKey
	value  any
	remove bool
}

// Key returns the bound key.
func (b Binding) Key() AnyKey { return b.key }

// Value returns the erased value. It is nil for removal bindings.
func (b Binding) Value() any { return b.value }

// IsRemoval reports whether the binding removes its key.
func (b Binding) IsRemoval() bool { return b.remove }

// Ensure Key implements AnyKey
var _ AnyKey = (*Key[string])(nil)
