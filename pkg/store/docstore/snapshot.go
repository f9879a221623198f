package docstore

// Snapshot is an immutable view of the whole document. Field handles
// (pkg/docfield) project out of Doc via pure getter/
// updater lenses; the store itself never inspects D's structure.
type Snapshot[D any] struct {
	Doc D
}

// Txn is a mutable draft of the document, scoped to one batch block.
// Unlike the flat backend there is nothing to clone eagerly besides D
// itself — document field writes replace Doc wholesale via the field's
// updater lens.
type Txn[D any] struct {
	Doc D
}

// NewTxn opens a draft seeded with base's document.
func NewTxn[D any](base *Snapshot[D]) *Txn[D] {
	return &Txn[D]{Doc: base.Doc}
}

// Snapshot freezes the draft into a new immutable Snapshot.
func (t *Txn[D]) Snapshot() *Snapshot[D] {
	return &Snapshot[D]{Doc: t.Doc}
}
