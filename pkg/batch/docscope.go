package batch

import (
	"context"

	"github.com/google/uuid"

	"github.com/cuemby/prefstore/pkg/docfield"
	"github.com/cuemby/prefstore/pkg/log"
	"github.com/cuemby/prefstore/pkg/store/docstore"
	"github.com/cuemby/prefstore/pkg/storemetrics"
)

// DocReadScope exposes point-in-time reads across any number of
// document field handles. DocRead and DocReadFlow back it with a fixed
// Snapshot[D]; DocUpdate backs it with the batch's live Txn[D] draft
// instead, so DocGet observes writes already made earlier in the same
// block.
type DocReadScope[D any] struct {
	snap *docstore.Snapshot[D]
	tx   *docstore.Txn[D]
}

// DocGet projects f's value out of this scope. Inside a batchUpdate
// block this reads the in-flight transactional document, including any
// prior writes in the same block; elsewhere it reads the scope's
// Snapshot.
func DocGet[D, T any](r *DocReadScope[D], f *docfield.Field[D, T]) T {
	if r.tx != nil {
		return f.ReadTxn(r.tx)
	}
	return f.ReadSnapshot(r.snap)
}

// DocWriteScope accumulates writes against one docstore.Txn[D].
// docfield.WholeDocument cannot be passed here at all: it has no
// WriteTxn method, so the type system excludes it from batch
// participation rather than requiring a runtime check.
type DocWriteScope[D any] struct {
	tx     *docstore.Txn[D]
	writes int
}

// DocSet writes v through f inside this batch.
func DocSet[D, T any](w *DocWriteScope[D], f *docfield.Field[D, T], v T) {
	f.WriteTxn(w.tx, v)
	w.writes++
}

// DocReset resets f to its default value inside this batch.
func DocReset[D, T any](w *DocWriteScope[D], f *docfield.Field[D, T]) {
	f.RemoveTxn(w.tx)
	w.writes++
}

// DocUpdateHandle reads f's current transactional value, applies fn,
// and writes the result back through f, all against this batch's own
// Txn[D] draft. fn sees writes made earlier in the same block.
func DocUpdateHandle[D, T any](w *DocWriteScope[D], f *docfield.Field[D, T], fn func(T) T) {
	cur := f.ReadTxn(w.tx)
	f.WriteTxn(w.tx, fn(cur))
	w.writes++
}

// DocRead runs fn against a DocReadScope over store's current Snapshot.
func DocRead[D any](store *docstore.Store[D], fn func(*DocReadScope[D])) {
	fn(&DocReadScope[D]{snap: store.Current()})
}

// DocWrite opens one docstore.Txn[D], runs fn against it, and commits
// the result as a single durable write.
func DocWrite[D any](ctx context.Context, store *docstore.Store[D], fn func(*DocWriteScope[D])) error {
	batchID := uuid.NewString()
	scope := &DocWriteScope[D]{}
	err := store.Commit(ctx, func(base *docstore.Snapshot[D]) *docstore.Snapshot[D] {
		scope.tx = docstore.NewTxn(base)
		fn(scope)
		return scope.tx.Snapshot()
	})
	if err != nil {
		return err
	}
	log.WithBatchID(batchID).Debug().Int("writes", scope.writes).Msg("batch.DocWrite committed")
	storemetrics.BatchSize.Observe(float64(scope.writes))
	return nil
}

// DocUpdate is DocWrite plus a preceding read: fn receives both a
// DocReadScope and a DocWriteScope over the same live Txn[D] draft, so
// reads inside fn observe writes made earlier in the same block
// (read-your-writes).
func DocUpdate[D any](ctx context.Context, store *docstore.Store[D], fn func(*DocReadScope[D], *DocWriteScope[D])) error {
	batchID := uuid.NewString()
	scope := &DocWriteScope[D]{}
	err := store.Commit(ctx, func(base *docstore.Snapshot[D]) *docstore.Snapshot[D] {
		scope.tx = docstore.NewTxn(base)
		fn(&DocReadScope[D]{tx: scope.tx}, scope)
		return scope.tx.Snapshot()
	})
	if err != nil {
		return err
	}
	log.WithBatchID(batchID).Debug().Int("writes", scope.writes).Msg("batch.DocUpdate committed")
	storemetrics.BatchSize.Observe(float64(scope.writes))
	return nil
}

// DocReadFlow re-runs project against a DocReadScope over every
// published Snapshot[D].
func DocReadFlow[D, T any](ctx context.Context, store *docstore.Store[D], project func(*DocReadScope[D]) T) (<-chan T, func()) {
	raw, cancel := store.Observe(ctx)
	out := make(chan T, 1)
	go func() {
		defer close(out)
		for snap := range raw {
			v := project(&DocReadScope[D]{snap: snap})
			select {
			case out <- v:
			default:
				select {
				case <-out:
				default:
				}
				out <- v
			}
		}
	}()
	return out, cancel
}
