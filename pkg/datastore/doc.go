/*
Package datastore is the factory that ties every other package together
into the two concrete stores callers actually construct: PreferencesDatastore
(flat, multi-cell backend) and ProtoDatastore[D] (single opaque document
backend). Both accept a caller-supplied path-producer, register handles
via the constructors in pkg/prefs/pkg/docfield, expose the batch engine
in pkg/batch, and — for the flat backend — the backup engine in pkg/backup.

Go has no generic methods, so handle constructors that need a type
parameter beyond the datastore's own (Enum, Serialized, Structural,
List, Set, Nullable, Mapped, docfield.Field, DocReadFlow) are free
package-level functions taking the datastore as their first argument,
the same shape as pkg/batch's Get/Set/DocGet/DocSet. Constructors whose
type is already fully determined by the backend (Bool, Int32, String,
Document, and so on) are plain methods.

A Migration is a caller-supplied transform run once at construction,
before any handle or observer can see the store's first snapshot. It is
not an automatic schema migrator — it never runs again after construction
and the caller is fully responsible for making it idempotent if they
reuse it across versions — but it is the escape hatch most real
preference stores need for renaming a key or backfilling a default that
predates a given release.
*/
package datastore
