package record

import (
	"errors"
	"fmt"
	"sort"
)

// DecodeConfig tells Decode which keys a payload may contain.
type DecodeConfig struct {
	// Keys resolves wire identifiers, including each key's legacy identifiers.
	Keys KeySet

	// IdentifierMapping maps extra wire identifiers to keys. It takes
	// precedence over Keys.
	IdentifierMapping map[string]AnyKey
}

// resolve maps a wire identifier to a key.
func (c DecodeConfig) resolve(id string) (AnyKey, bool) {
	if k, ok := c.IdentifierMapping[id]; ok && k != nil {
		return k, true
	}
	return c.Keys.Resolve(id)
}

// FieldError reports one field that failed to decode.
type FieldError struct {
	Key AnyKey
	Err error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: field %q: %v", ErrFieldDecode.Error(), e.Key.ID(), e.Err)
}

func (e *FieldError) Unwrap() []error {
	return []error{ErrFieldDecode, e.Err}
}

// Decoded is the partial-success result of Decode.
type Decoded struct {
	// Snapshot holds every field that resolved to a key and decoded cleanly.
	Snapshot Snapshot

	// Unresolved holds raw fields that no configured key claims, plus fields
	// that failed to decode, keyed by their wire identifier.
	Unresolved map[string][]byte

	// Errors lists per-field decode failures.
	Errors []FieldError
}

// Err joins the field errors, or returns nil when every field decoded.
func (d Decoded) Err() error {
	if len(d.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(d.Errors))
	for i := range d.Errors {
		errs[i] = &d.Errors[i]
	}
	return errors.Join(errs...)
}

// EncodeFields encodes each non-transient binding of s under its identifier.
func EncodeFields(s Snapshot, c Codec) (map[string][]byte, error) {
	fields := make(map[string][]byte, s.Len())
	var firstErr error
	s.Accept(VisitorFunc(func(key AnyKey, value any) {
		if firstErr != nil || key.Transient() {
			return
		}
		data, err := key.encode(c, value)
		if err != nil {
			firstErr = fmt.Errorf("record: encode %q: %w", key.ID(), err)
			return
		}
		fields[key.ID()] = data
	}))
	if firstErr != nil {
		return nil, firstErr
	}
	return fields, nil
}

// Encode serializes s with c. Transient keys are skipped.
func Encode(s Snapshot, c Codec) ([]byte, error) {
	fields, err := EncodeFields(s, c)
	if err != nil {
		return nil, err
	}
	return c.JoinFields(fields)
}

// Decode parses data written by Encode.
//
// Only a malformed container returns an error. Per-field failures are
// collected in Decoded.Errors and the rest of the record stays usable.
func Decode(data []byte, cfg DecodeConfig, c Codec) (Decoded, error) {
	fields, err := c.SplitFields(data)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return DecodeFields(fields, cfg, c), nil
}

// DecodeFields decodes already split fields. Fields are visited in
// identifier order so error lists are deterministic.
func DecodeFields(fields map[string][]byte, cfg DecodeConfig, c Codec) Decoded {
	out := Decoded{Unresolved: make(map[string][]byte)}
	storage := NewStorage()

	ids := make([]string, 0, len(fields))
	for id := range fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		raw := fields[id]
		key, ok := cfg.resolve(id)
		if !ok || key.Transient() {
			out.Unresolved[id] = raw
			continue
		}
		if storage.contains(key.ID()) && id != key.ID() {
			// The current identifier wins over a legacy one.
			continue
		}
		value, err := key.decode(c, raw)
		if err != nil {
			out.Errors = append(out.Errors, FieldError{Key: key, Err: err})
			out.Unresolved[id] = raw
			continue
		}
		storage.put(key, value)
	}

	out.Snapshot = Snapshot{s: storage}
	return out
}
