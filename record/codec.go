package record

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Codec encodes individual values and the field container that holds them.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Fields: JoinFields/SplitFields must round-trip the raw field bytes.
type Codec interface {
	// Name returns a short identifier such as "json" or "cbor".
	Name() string

	// Marshal encodes a single value.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes a single value into v.
	Unmarshal(data []byte, v any) error

	// JoinFields encodes already-encoded fields into one container.
	JoinFields(fields map[string][]byte) ([]byte, error)

	// SplitFields decodes a container into raw, still-encoded fields.
	SplitFields(data []byte) (map[string][]byte, error)
}

// JSONCodec encodes records as a JSON object, one member per key.
type JSONCodec struct{}

// NewJSONCodec creates a JSON codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

func (c *JSONCodec) Name() string { return "json" }

func (c *JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (c *JSONCodec) JoinFields(fields map[string][]byte) ([]byte, error) {
	raw := make(map[string]json.RawMessage, len(fields))
	for id, data := range fields {
		raw[id] = json.RawMessage(data)
	}
	return json.Marshal(raw)
}

func (c *JSONCodec) SplitFields(data []byte) (map[string][]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	fields := make(map[string][]byte, len(raw))
	for id, msg := range raw {
		fields[id] = []byte(msg)
	}
	return fields, nil
}

// CBORCodec encodes records as a canonical CBOR map. It is the default
// persisted format: compact, deterministic, and lossless for time values.
type CBORCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCBORCodec creates a CBOR codec with canonical map ordering and
// RFC 3339 nanosecond timestamps.
func NewCBORCodec() (*CBORCodec, error) {
	encOpts := cbor.CanonicalEncOptions()
	encOpts.Time = cbor.TimeRFC3339Nano
	enc, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("record: cbor encoder: %w", err)
	}
	dec, err := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("record: cbor decoder: %w", err)
	}
	return &CBORCodec{enc: enc, dec: dec}, nil
}

// MustCBORCodec is NewCBORCodec for package-level initialization.
func MustCBORCodec() *CBORCodec {
	c, err := NewCBORCodec()
	if err != nil {
		panic(err)
	}
	return c
}

func (c *CBORCodec) Name() string { return "cbor" }

func (c *CBORCodec) Marshal(v any) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c *CBORCodec) Unmarshal(data []byte, v any) error {
	return c.dec.Unmarshal(data, v)
}

func (c *CBORCodec) JoinFields(fields map[string][]byte) ([]byte, error) {
	raw := make(map[string]cbor.RawMessage, len(fields))
	for id, data := range fields {
		raw[id] = cbor.RawMessage(data)
	}
	return c.enc.Marshal(raw)
}

func (c *CBORCodec) SplitFields(data []byte) (map[string][]byte, error) {
	var raw map[string]cbor.RawMessage
	if err := c.dec.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	fields := make(map[string][]byte, len(raw))
	for id, msg := range raw {
		fields[id] = []byte(msg)
	}
	return fields, nil
}

// CodecByName returns the codec registered under name ("json" or "cbor").
func CodecByName(name string) (Codec, error) {
	switch name {
	case "json":
		return NewJSONCodec(), nil
	case "cbor", "":
		return NewCBORCodec()
	default:
		return nil, fmt.Errorf("record: unknown codec %q", name)
	}
}

var (
	_ Codec = (*JSONCodec)(nil)
	_ Codec = (*CBORCodec)(nil)
)
