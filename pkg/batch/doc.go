/*
Package batch collapses several single-key commits into one durable
write by opening a single flatstore.Txn or docstore.Txn[D] and routing
every handle read/write through it, then committing once.

The speedup this buys over N individual Commit calls comes from
avoiding N-1 redundant disk syncs and writer-goroutine round trips; the
atomicity it buys is that a batch either fully applies or not at all,
since a failed flat-backend batch discards its draft rather than
partially persisting it.

A flat-backend handle whose SupportsBatch() is false can't be used
inside Write/Update; attempting to do so aborts the batch with a
NotSupported error. On the document side the same exclusion is a
compile-time property: docfield.WholeDocument has no WriteTxn method,
so it simply doesn't satisfy what DocSet/DocReset require.
*/
package batch
