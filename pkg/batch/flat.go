package batch

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cuemby/prefstore/pkg/log"
	"github.com/cuemby/prefstore/pkg/prefs"
	"github.com/cuemby/prefstore/pkg/prefserr"
	"github.com/cuemby/prefstore/pkg/store/flatstore"
	"github.com/cuemby/prefstore/pkg/storemetrics"
)

// ReadScope exposes point-in-time reads across any number of
// flat-backend handles. Read and ReadFlow back it with a fixed
// Snapshot; Update backs it with the batch's live Txn draft instead, so
// Get observes writes already made earlier in the same block.
type ReadScope struct {
	snap *flatstore.Snapshot
	tx   *flatstore.Txn
}

// Get projects h's value out of this scope. Inside a batchUpdate block
// this reads the in-flight transactional value, including any prior
// writes in the same block; elsewhere it reads the scope's Snapshot.
func Get[T any](r *ReadScope, h *prefs.Handle[T]) T {
	if r.tx != nil {
		return h.ReadTxn(r.tx)
	}
	return h.ReadSnapshot(r.snap)
}

// WriteScope accumulates writes against one flatstore.Txn. The first
// NotSupported error recorded by Set or Delete aborts the whole batch:
// subsequent calls become no-ops and Write returns that error without
// persisting any of the scope's writes.
type WriteScope struct {
	tx     *flatstore.Txn
	err    error
	writes int
}

// Set writes v through h inside this batch. If h does not support
// batch participation, the batch is aborted with a NotSupported error.
func Set[T any](w *WriteScope, h *prefs.Handle[T], v T) {
	if w.err != nil {
		return
	}
	if !h.SupportsBatch() {
		w.err = prefserr.NotSupported("batch.Set", h.Key(), fmt.Errorf("handle does not support batch participation"))
		return
	}
	h.WriteTxn(w.tx, v)
	w.writes++
}

// Delete removes h's cell inside this batch.
func Delete[T any](w *WriteScope, h *prefs.Handle[T]) {
	if w.err != nil {
		return
	}
	if !h.SupportsBatch() {
		w.err = prefserr.NotSupported("batch.Delete", h.Key(), fmt.Errorf("handle does not support batch participation"))
		return
	}
	h.RemoveTxn(w.tx)
	w.writes++
}

// UpdateHandle reads h's current transactional value, applies f, and
// writes the result back through h, all against this batch's own Txn
// draft. f sees writes made earlier in the same block, including by an
// earlier UpdateHandle call against the same handle.
func UpdateHandle[T any](w *WriteScope, h *prefs.Handle[T], f func(T) T) {
	if w.err != nil {
		return
	}
	if !h.SupportsBatch() {
		w.err = prefserr.NotSupported("batch.UpdateHandle", h.Key(), fmt.Errorf("handle does not support batch participation"))
		return
	}
	cur := h.ReadTxn(w.tx)
	h.WriteTxn(w.tx, f(cur))
	w.writes++
}

// Err reports the first error recorded by this scope, if any.
func (w *WriteScope) Err() error { return w.err }

// Read runs fn against a ReadScope over store's current Snapshot. It
// never blocks on the writer goroutine since reads don't require a
// commit.
func Read(store *flatstore.Store, fn func(*ReadScope)) {
	fn(&ReadScope{snap: store.Current()})
}

// Write opens one flatstore.Txn, runs fn against it, and commits the
// result as a single durable write. If fn records an error via Set or
// Delete, the batch is discarded and that error is returned; the store
// still performs one no-op persist of its unchanged snapshot, since
// Commit has no signal for "don't write anything at all" short of
// writing back what was already there.
func Write(ctx context.Context, store *flatstore.Store, fn func(*WriteScope)) error {
	batchID := uuid.NewString()
	scope := &WriteScope{}
	err := store.Commit(ctx, func(base *flatstore.Snapshot) *flatstore.Snapshot {
		scope.tx = flatstore.NewTxn(base)
		fn(scope)
		if scope.err != nil {
			return base
		}
		return scope.tx.Snapshot()
	})
	if err != nil {
		return err
	}
	if scope.err == nil {
		log.WithBatchID(batchID).Debug().Int("writes", scope.writes).Msg("batch.Write committed")
		storemetrics.BatchSize.Observe(float64(scope.writes))
	}
	return scope.err
}

// ReadFlow re-runs project against a ReadScope over every published
// Snapshot, letting a caller combine several handles into one derived
// reactive value (for example a struct built from three separate
// preference cells) that updates whenever any of them changes.
func ReadFlow[T any](ctx context.Context, store *flatstore.Store, project func(*ReadScope) T) (<-chan T, func()) {
	raw, cancel := store.Observe(ctx)
	out := make(chan T, 1)
	go func() {
		defer close(out)
		for snap := range raw {
			v := project(&ReadScope{snap: snap})
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

// Update is Write plus a preceding read: fn receives both a ReadScope
// and a WriteScope over the same live Txn draft, so reads inside fn
// observe writes made earlier in the same block (read-your-writes),
// letting callers derive a write from several handles' current values
// atomically.
func Update(ctx context.Context, store *flatstore.Store, fn func(*ReadScope, *WriteScope)) error {
	batchID := uuid.NewString()
	scope := &WriteScope{}
	err := store.Commit(ctx, func(base *flatstore.Snapshot) *flatstore.Snapshot {
		scope.tx = flatstore.NewTxn(base)
		fn(&ReadScope{tx: scope.tx}, scope)
		if scope.err != nil {
			return base
		}
		return scope.tx.Snapshot()
	})
	if err != nil {
		return err
	}
	if scope.err == nil {
		log.WithBatchID(batchID).Debug().Int("writes", scope.writes).Msg("batch.Update committed")
		storemetrics.BatchSize.Observe(float64(scope.writes))
	}
	return scope.err
}
