package prefs

import (
	"github.com/cuemby/prefstore/pkg/cell"
	"github.com/cuemby/prefstore/pkg/store/flatstore"
)

// Bool binds a boolean cell at key, defaulting to def when absent.
func Bool(store *flatstore.Store, key string, def bool) *Handle[bool] {
	return newHandle(store, key, def,
		func(s *flatstore.Snapshot) bool {
			v, ok := s.Get(key)
			if !ok || v.Tag != cell.TagBool {
				return def
			}
			return v.B
		},
		func(tx *flatstore.Txn, val bool) { tx.Put(key, cell.Bool(val)) },
		func(tx *flatstore.Txn) { tx.Delete(key) },
	)
}

// Int32 binds a 32-bit integer cell at key.
func Int32(store *flatstore.Store, key string, def int32) *Handle[int32] {
	return newHandle(store, key, def,
		func(s *flatstore.Snapshot) int32 {
			v, ok := s.Get(key)
			if !ok || v.Tag != cell.TagInt32 {
				return def
			}
			return v.I32
		},
		func(tx *flatstore.Txn, val int32) { tx.Put(key, cell.Int32(val)) },
		func(tx *flatstore.Txn) { tx.Delete(key) },
	)
}

// Int64 binds a 64-bit integer cell at key.
func Int64(store *flatstore.Store, key string, def int64) *Handle[int64] {
	return newHandle(store, key, def,
		func(s *flatstore.Snapshot) int64 {
			v, ok := s.Get(key)
			if !ok || v.Tag != cell.TagInt64 {
				return def
			}
			return v.I64
		},
		func(tx *flatstore.Txn, val int64) { tx.Put(key, cell.Int64(val)) },
		func(tx *flatstore.Txn) { tx.Delete(key) },
	)
}

// Float32 binds a single-precision float cell at key.
func Float32(store *flatstore.Store, key string, def float32) *Handle[float32] {
	return newHandle(store, key, def,
		func(s *flatstore.Snapshot) float32 {
			v, ok := s.Get(key)
			if !ok || v.Tag != cell.TagFloat32 {
				return def
			}
			return v.F32
		},
		func(tx *flatstore.Txn, val float32) { tx.Put(key, cell.Float32(val)) },
		func(tx *flatstore.Txn) { tx.Delete(key) },
	)
}

// Float64 binds a double-precision float cell at key.
func Float64(store *flatstore.Store, key string, def float64) *Handle[float64] {
	return newHandle(store, key, def,
		func(s *flatstore.Snapshot) float64 {
			v, ok := s.Get(key)
			if !ok || v.Tag != cell.TagFloat64 {
				return def
			}
			return v.F64
		},
		func(tx *flatstore.Txn, val float64) { tx.Put(key, cell.Float64(val)) },
		func(tx *flatstore.Txn) { tx.Delete(key) },
	)
}

// String binds a UTF-8 string cell at key.
func String(store *flatstore.Store, key string, def string) *Handle[string] {
	return newHandle(store, key, def,
		func(s *flatstore.Snapshot) string {
			v, ok := s.Get(key)
			if !ok || v.Tag != cell.TagString {
				return def
			}
			return v.S
		},
		func(tx *flatstore.Txn, val string) { tx.Put(key, cell.String(val)) },
		func(tx *flatstore.Txn) { tx.Delete(key) },
	)
}

// StringSet binds an unordered string-set cell at key.
func StringSet(store *flatstore.Store, key string, def cell.StringSet) *Handle[cell.StringSet] {
	return newHandle(store, key, def,
		func(s *flatstore.Snapshot) cell.StringSet {
			v, ok := s.Get(key)
			if !ok || v.Tag != cell.TagStringSet {
				return def
			}
			return v.Set
		},
		func(tx *flatstore.Txn, val cell.StringSet) { tx.Put(key, cell.Set(val)) },
		func(tx *flatstore.Txn) { tx.Delete(key) },
	)
}
