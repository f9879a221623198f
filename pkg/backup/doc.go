/*
Package backup implements tagged-union JSON export/import over the flat
("preferences") backend, plus a free-form map[string]any variant for
callers that don't want to deal with cell.Value directly.

The wire format is exactly the envelope pkg/cell already defines for
on-disk cell storage — {"type": "...", "value": <json>} per entry,
wrapped in {"preferences": [...]}. Sharing the codec means there is
exactly one place that knows how a primitive round-trips through JSON.

Export is a pure read over one Snapshot. Import opens a single commit,
so a backup either fully applies or (on parse failure) doesn't touch
the store at all; a per-entry decode failure rejects only that entry
and logs it, without aborting the rest of the import.
*/
package backup
