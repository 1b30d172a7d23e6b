package record

// Defaults is an explicit registry of default values, passed to builders with
// WithDefaults. There is no global catalogue.
type Defaults struct {
	s *Storage
}

// NewDefaults collects the declared default of every key whose initial-value
// policy is InitialDefault.
func NewDefaults(keys ...AnyKey) *Defaults {
	d := &Defaults{s: NewStorage()}
	for _, k := range keys {
		if k == nil || k.InitialValue() != InitialDefault {
			continue
		}
		if v, ok := k.defaultValue(); ok {
			d.s.put(k, v)
		}
	}
	return d
}

// DefaultsFor is NewDefaults over a KeySet.
func DefaultsFor(keys KeySet) *Defaults {
	return NewDefaults(keys.Keys()...)
}

// Set overrides or adds defaults.
func (d *Defaults) Set(bindings ...Binding) *Defaults {
	d.s.Set(bindings...)
	return d
}

// Len returns the number of registered defaults.
func (d *Defaults) Len() int {
	if d == nil {
		return 0
	}
	return d.s.Len()
}

// Snapshot returns the defaults as a snapshot.
func (d *Defaults) Snapshot() Snapshot {
	if d == nil {
		return Snapshot{}
	}
	return d.s.Snapshot()
}
