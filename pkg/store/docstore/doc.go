/*
Package docstore implements the "proto" storage backend: a single
immutable document of a caller-defined type D, serialized with a
caller-supplied Codec and persisted to one file with an atomic
temp-then-rename write.

Unlike flatstore there is no bucket of independent cells — the whole
document is the unit of storage, and per-field reactivity is built on
top as pure in-process lenses over the same Snapshot[D], never by
teaching the storage layer about schema.
*/
package docstore
