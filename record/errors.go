package record

import "errors"

// Sentinel errors for record operations.
var (
	// ErrKeyConflict indicates two different keys claim the same identifier.
	ErrKeyConflict = errors.New("record: conflicting key identifier")

	// ErrAmbiguousModification indicates an identity appears in both the
	// modified and the removed side of a Modification.
	ErrAmbiguousModification = errors.New("record: key both modified and removed")

	// ErrMalformedPayload indicates the encoded container itself is unreadable.
	ErrMalformedPayload = errors.New("record: malformed payload")

	// ErrFieldDecode indicates a single field could not be decoded.
	ErrFieldDecode = errors.New("record: field decode failed")

	// ErrNilKey indicates a nil key was passed where a key is required.
	ErrNilKey = errors.New("record: key is nil")
)
