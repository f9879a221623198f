package flatstore

import (
	"maps"

	"github.com/cuemby/prefstore/pkg/cell"
)

// Snapshot is an immutable point-in-time view of every cell in the flat
// backend. Snapshots are safe to share across any number of readers;
// once published, a Snapshot's contents never change.
type Snapshot struct {
	cells map[string]cell.Value
}

// emptySnapshot is returned on load when the on-disk file is missing or
// corrupted: a corrupted file yields an empty snapshot rather than a
// load failure propagated to reading handles.
func emptySnapshot() *Snapshot {
	return &Snapshot{cells: make(map[string]cell.Value)}
}

// Get returns the cell at key and whether it is present. Absence is
// semantically distinct from a value equal to a handle's default.
func (s *Snapshot) Get(key string) (cell.Value, bool) {
	v, ok := s.cells[key]
	return v, ok
}

// Keys returns every key currently present, in no particular order.
func (s *Snapshot) Keys() []string {
	out := make([]string, 0, len(s.cells))
	for k := range s.cells {
		out = append(out, k)
	}
	return out
}

// Txn is a mutable draft of a Snapshot, scoped to a single batch block.
// Reads observe writes made earlier in the same block (read-your-writes).
// On block success the draft atomically replaces the store's current
// Snapshot; on failure it is discarded.
type Txn struct {
	cells map[string]cell.Value
}

// NewTxn opens a mutable draft over base. Used by the batch engine to
// start a transaction scoped to one batch block.
func NewTxn(base *Snapshot) *Txn {
	return &Txn{cells: maps.Clone(base.cells)}
}

func (t *Txn) Get(key string) (cell.Value, bool) {
	v, ok := t.cells[key]
	return v, ok
}

func (t *Txn) Put(key string, v cell.Value) {
	t.cells[key] = v
}

func (t *Txn) Delete(key string) {
	delete(t.cells, key)
}

// Snapshot freezes the draft into a new immutable Snapshot.
func (t *Txn) Snapshot() *Snapshot {
	return &Snapshot{cells: maps.Clone(t.cells)}
}

// Peek returns a Snapshot view backed directly by this draft's map, with
// no clone. Unlike Snapshot it stays live: a Put or Delete made after
// Peek is called is visible through the view it returned. It exists so
// a batch block's reads can observe writes performed earlier in the
// same block; the view must not be retained past the Txn it came from.
func (t *Txn) Peek() *Snapshot {
	return &Snapshot{cells: t.cells}
}
