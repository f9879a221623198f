package prefs

import (
	"encoding/json"

	"github.com/cuemby/prefstore/pkg/cell"
	"github.com/cuemby/prefstore/pkg/log"
	"github.com/cuemby/prefstore/pkg/store/flatstore"
)

// Enum binds a string cell to a closed set of values of an underlying
// string type E. Decoding a value outside known falls back to def,
// exactly as if the cell were absent — this is what protects a handle
// against a stale or hand-edited cell holding a variant name that no
// longer exists.
func Enum[E ~string](store *flatstore.Store, key string, def E, known ...E) *Handle[E] {
	isKnown := func(v E) bool {
		for _, k := range known {
			if k == v {
				return true
			}
		}
		return false
	}
	return newHandle(store, key, def,
		func(s *flatstore.Snapshot) E {
			v, ok := s.Get(key)
			if !ok || v.Tag != cell.TagString {
				return def
			}
			candidate := E(v.S)
			if !isKnown(candidate) {
				return def
			}
			return candidate
		},
		func(tx *flatstore.Txn, val E) { tx.Put(key, cell.String(string(val))) },
		func(tx *flatstore.Txn) { tx.Delete(key) },
	)
}

// Serialized binds an opaque value of type T to a string cell via
// caller-supplied encode/decode functions. A decode error is treated as
// corruption: it is logged at debug and the handle falls back to def,
// never propagated as an error to the reader.
func Serialized[T any](store *flatstore.Store, key string, def T, encode func(T) string, decode func(string) (T, error)) *Handle[T] {
	return newHandle(store, key, def,
		func(s *flatstore.Snapshot) T {
			v, ok := s.Get(key)
			if !ok || v.Tag != cell.TagString {
				return def
			}
			val, err := decode(v.S)
			if err != nil {
				log.WithKey(key).Debug().Err(err).Msg("prefs: corrupted serialized cell, using default")
				return def
			}
			return val
		},
		func(tx *flatstore.Txn, val T) { tx.Put(key, cell.String(encode(val))) },
		func(tx *flatstore.Txn) { tx.Delete(key) },
	)
}

// Structural binds a caller-defined struct T to a string cell, JSON
// encoding/decoding it automatically. Unknown fields encountered on
// decode are ignored rather than rejected, matching encoding/json's
// default behavior, so old cells remain readable after a struct gains
// fields.
func Structural[T any](store *flatstore.Store, key string, def T) *Handle[T] {
	encode := func(v T) string {
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
	decode := func(s string) (T, error) {
		var v T
		err := json.Unmarshal([]byte(s), &v)
		return v, err
	}
	return Serialized(store, key, def, encode, decode)
}

// List binds a slice of caller-encoded elements to a string cell holding
// a JSON array of per-element encodings. An element that fails to
// decode is skipped rather than failing the whole read; only a
// completely malformed array (not valid JSON, or not an array of
// strings) falls back to def.
func List[T any](store *flatstore.Store, key string, def []T, encodeElem func(T) string, decodeElem func(string) (T, error)) *Handle[[]T] {
	return newHandle(store, key, def,
		func(s *flatstore.Snapshot) []T {
			v, ok := s.Get(key)
			if !ok || v.Tag != cell.TagString {
				return def
			}
			var raw []string
			if err := json.Unmarshal([]byte(v.S), &raw); err != nil {
				log.WithKey(key).Debug().Err(err).Msg("prefs: malformed list cell, using default")
				return def
			}
			out := make([]T, 0, len(raw))
			for _, elem := range raw {
				val, err := decodeElem(elem)
				if err != nil {
					log.WithKey(key).Debug().Err(err).Msg("prefs: skipping undecodable list element")
					continue
				}
				out = append(out, val)
			}
			return out
		},
		func(tx *flatstore.Txn, val []T) {
			raw := make([]string, len(val))
			for i, elem := range val {
				raw[i] = encodeElem(elem)
			}
			data, _ := json.Marshal(raw)
			tx.Put(key, cell.String(string(data)))
		},
		func(tx *flatstore.Txn) { tx.Delete(key) },
	)
}

// Set binds a collection of caller-encoded elements to a flat-backend
// string-set cell, one encoded member per element. Duplicate encodings
// collapse, matching a set's semantics; an element whose encoding fails
// to decode back is skipped.
func Set[T any](store *flatstore.Store, key string, def []T, encodeElem func(T) string, decodeElem func(string) (T, error)) *Handle[[]T] {
	return newHandle(store, key, def,
		func(s *flatstore.Snapshot) []T {
			v, ok := s.Get(key)
			if !ok || v.Tag != cell.TagStringSet {
				return def
			}
			members := v.Set.Slice()
			out := make([]T, 0, len(members))
			for _, m := range members {
				val, err := decodeElem(m)
				if err != nil {
					log.WithKey(key).Debug().Err(err).Msg("prefs: skipping undecodable set element")
					continue
				}
				out = append(out, val)
			}
			return out
		},
		func(tx *flatstore.Txn, val []T) {
			members := make([]string, len(val))
			for i, elem := range val {
				members[i] = encodeElem(elem)
			}
			tx.Put(key, cell.Set(cell.NewStringSet(members...)))
		},
		func(tx *flatstore.Txn) { tx.Delete(key) },
	)
}
