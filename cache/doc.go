// Package cache keeps a two-tier, differential copy of account records.
//
// Each account id maps to one entry. An entry is either absent, present only
// in the persistent Store (disk-only), or resident in memory. LoadEntry
// promotes a disk-only entry to memory exactly once, no matter how many
// goroutines ask for it at the same time. CommunicateRemoteChanges merges a
// full snapshot from the source of truth. CommunicateModifications applies a
// delta without re-fetching. PurgeMemoryCache drops the memory copy after
// making sure the disk copy is current, and ClearEntry removes both tiers.
//
// Every accepted mutation is applied in memory before the call returns and
// persisted in the background. The returned Flush reports when the write has
// reached the store. A failed write is retried by the configured
// resilience.Executor; if it still fails, the memory copy stays authoritative
// and the entry is rewritten on the next mutation, purge or Close.
//
// Persisted fields the caller does not know about are kept verbatim and
// written back on every persist, so a process with a smaller key catalogue
// never destroys data written by a newer one.
package cache
