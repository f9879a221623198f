/*
Package flatstore implements the "preferences" storage backend: a
durable mapping from (string key, primitive type) to a primitive
value, backed by a single BoltDB (bbolt) bucket.

# Architecture

	┌──────────────────── FLAT SNAPSHOT STORE ─────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │               Store                          │          │
	│  │  - File: path from PathProducer (bbolt)      │          │
	│  │  - One bucket, one tagged JSON cell per key  │          │
	│  │  - current: atomic.Pointer[Snapshot]         │          │
	│  │  - writer goroutine: serializes commits      │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │             Snapshot                         │          │
	│  │  - immutable map[string]cell.Value           │          │
	│  │  - shared by any number of readers           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │                Txn                           │          │
	│  │  - mutable draft cloned from a Snapshot      │          │
	│  │  - read-your-writes within one batch block   │          │
	│  │  - becomes the next Snapshot on commit       │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

Commits are serialized by a single writer goroutine: at most one Update
transaction runs against bbolt at a time, giving single-writer/many-reader
semantics. Reads never touch that goroutine — they load the current
Snapshot off an atomic pointer and are therefore wait-free.
*/
package flatstore
