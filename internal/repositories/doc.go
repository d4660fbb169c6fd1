// Package repositories implements SQLite persistence for listening history and generated insights.
//
// Key Implementations:
//   - [KVRepository] : named blobs in kv_store, last write wins
//   - [MemoryStore] : in-process [BlobStore] for runs without a database
//   - [HistoryStore] : the serialized play event sequence under a single key
//   - [InsightRepository] : insight archive with soft deletes and sequence ordering
//
// Sequence numbers give archived insights a stable, human-readable order independent of their UUIDs.
// The [NextSequence] function atomically increments per-table counters in dedicated sequence tables.
package repositories
