// Package observe provides observability primitives for account record
// operations.
//
// It is a pure instrumentation library: no storage, no transport, no I/O
// beyond exporter setup. The cache and the account coordinator take a Logger,
// a Tracer and a Metrics value from an Observer and describe each operation
// with an Op.
package observe
