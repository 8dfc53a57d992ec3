// Package store provides SQLite-backed save slots.
//
// Each slot holds one snapshot payload (canonical JSON produced by the
// engine) together with a domain-separated SHA-256 of the stored bytes.
// Reads recompute the hash and refuse payloads that no longer match.
//
// # Ordering
//
// Slots carry a seq INTEGER assigned from a per-database counter on every
// write. Listings order by seq, never by wall-clock time, so two saves in
// the same millisecond still list deterministically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
