/*
Package docfield implements field-projection handles over the document
("proto") backend from pkg/store/docstore: pure getter/updater lenses
into a caller-defined document type D, reusing the read/write/remove
closure shape pkg/prefs uses for the flat backend.

A document has no notion of a field being "absent" the way a flat cell
does — D is always fully present once the store is open — so Remove and
ResetToDefault for a field handle are the same operation: write the
field's default value back through its updater lens.

WholeDocument exists alongside field handles for callers that need to
replace an entire document atomically; it is explicitly excluded from
batch participation, since batching is a multi-key/multi-field
composition concept that doesn't apply to a handle that already spans
the whole aggregate.
*/
package docfield
