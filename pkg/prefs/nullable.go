package prefs

import "github.com/cuemby/prefstore/pkg/store/flatstore"

// Nullable wraps any existing Handle[T] into a Handle[*T] where cell
// absence means nil rather than T's default. Writing nil removes the
// underlying cell the same way Delete does; writing a non-nil pointer
// writes through to the wrapped handle's own codec.
func Nullable[T any](base *Handle[T]) *Handle[*T] {
	h := newHandle[*T](base.store, base.key, nil,
		func(s *flatstore.Snapshot) *T {
			if _, ok := s.Get(base.key); !ok {
				return nil
			}
			v := base.read(s)
			return &v
		},
		func(tx *flatstore.Txn, val *T) {
			if val == nil {
				base.remove(tx)
				return
			}
			base.write(tx, *val)
		},
		func(tx *flatstore.Txn) { base.remove(tx) },
	)
	h.batchable = base.batchable
	return h
}
