// Package store provides SQLite-backed authoritative storage for the tag
// ledger.
//
// The store owns four structures:
//   - Tags: the authoritative map from tag id to tag record
//   - Participant index: bounded per-principal lookup sequences (advisory)
//   - Counters: monotonic usage counters
//   - Contract row: deployment parameters, pause flag, and the id allocator
//
// # Consistency model
//
// The tag table is the single source of truth. The participant index is a
// best-effort accelerator capped at a fixed length per principal: once a
// principal's sequence is full, further tags are silently absent from the
// index while still existing in the store.
//
// Every mutating ledger operation runs inside one Update transaction. The
// id allocator advances in the same transaction as the tag insert, so ids
// are dense, start at 1, and are never reused or skipped even when an
// operation aborts.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// A single connection is used, preserving the single-writer execution model
// the ledger assumes.
package store
