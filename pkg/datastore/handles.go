package datastore

import (
	"context"

	"github.com/cuemby/prefstore/pkg/batch"
	"github.com/cuemby/prefstore/pkg/prefs"
)

// The constructors below need a type parameter beyond Preferences' own
// (none), so Go's lack of generic methods pushes them to package-level
// functions taking the datastore as their first argument, mirroring
// pkg/batch's Get/Set shape.

// Enum binds a closed-set string-backed handle on ds.
func Enum[E ~string](ds *Preferences, key string, def E, known ...E) *prefs.Handle[E] {
	return prefs.Enum(ds.store, key, def, known...)
}

// Serialized binds an opaque caller-encoded handle on ds.
func Serialized[T any](ds *Preferences, key string, def T, encode func(T) string, decode func(string) (T, error)) *prefs.Handle[T] {
	return prefs.Serialized(ds.store, key, def, encode, decode)
}

// Structural binds a JSON-encoded struct handle on ds.
func Structural[T any](ds *Preferences, key string, def T) *prefs.Handle[T] {
	return prefs.Structural(ds.store, key, def)
}

// List binds a JSON-array-of-encoded-elements handle on ds.
func List[T any](ds *Preferences, key string, def []T, encodeElem func(T) string, decodeElem func(string) (T, error)) *prefs.Handle[[]T] {
	return prefs.List(ds.store, key, def, encodeElem, decodeElem)
}

// Set binds a deduplicating string-set-backed handle on ds.
func Set[T any](ds *Preferences, key string, def []T, encodeElem func(T) string, decodeElem func(string) (T, error)) *prefs.Handle[[]T] {
	return prefs.Set(ds.store, key, def, encodeElem, decodeElem)
}

// Nullable wraps base so cell absence reads as nil instead of base's default.
func Nullable[T any](base *prefs.Handle[T]) *prefs.Handle[*T] {
	return prefs.Nullable(base)
}

// Mapped derives a Handle[B] from base via a pair of inverse functions.
func Mapped[A, B any](base *prefs.Handle[A], convert func(A) B, reverse func(B) A) *prefs.Handle[B] {
	return prefs.Mapped(base, convert, reverse)
}

// ReadFlow re-runs project against every published snapshot, combining
// any number of ds's handles into one derived reactive value.
func ReadFlow[T any](ctx context.Context, ds *Preferences, project func(*batch.ReadScope) T) (<-chan T, func()) {
	return batch.ReadFlow(ctx, ds.store, project)
}
