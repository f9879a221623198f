package prefs

import "github.com/cuemby/prefstore/pkg/store/flatstore"

// Mapped derives a Handle[B] from an existing Handle[A] via a pair of
// pure, inverse functions. Reads run convert after the base handle's own
// codec decodes the cell; writes run reverse before the base handle's
// codec encodes it. Delete and ResetToDefault delegate to the source
// handle unchanged.
func Mapped[A, B any](base *Handle[A], convert func(A) B, reverse func(B) A) *Handle[B] {
	h := newHandle[B](base.store, base.key, convert(base.def),
		func(s *flatstore.Snapshot) B { return convert(base.read(s)) },
		func(tx *flatstore.Txn, val B) { base.write(tx, reverse(val)) },
		func(tx *flatstore.Txn) { base.remove(tx) },
	)
	h.batchable = base.batchable
	return h
}
