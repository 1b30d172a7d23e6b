// Package record provides a typed, extensible key/value store for account
// attributes.
//
// A Key fixes the value type of one attribute together with its presence
// semantics (required or optional) and its initial-value policy. Values are
// stored type-erased in a Storage, but every write goes through a Key, so the
// dynamic type of a bound value always matches the key's declared type.
//
// # Core Types
//
//   - Key[V]: typed descriptor with a stable string identifier.
//   - Snapshot: immutable bundle of bindings with typed accessors on Key.
//   - Builder: mutable accumulator with set, remove, merge and defaults.
//   - Visitor / KeyVisitor: dispatch over heterogeneous keys without reflection.
//   - Modification: a delta made of a modified side and a removed side.
//
// # Usage
//
//	var Nickname = record.NewKey[string]("nickname")
//
//	details := record.NewBuilder().
//	    Set(Nickname.Bind("ada")).
//	    Build()
//
//	name, ok := Nickname.Get(details)
//
// # Wire format
//
// Encode writes one field per bound key, named by the key identifier and
// holding the key's own value encoding. Decode needs an explicit DecodeConfig
// because a payload alone cannot enumerate which keys produced it; fields that
// fail to decode are reported individually and never fail the whole record.
package record
