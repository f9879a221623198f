package prefs

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/cuemby/prefstore/pkg/prefserr"
	"github.com/cuemby/prefstore/pkg/store/flatstore"
)

// Handle is a typed accessor bound to one key in a flatstore.Store. Every
// constructor in this package returns a *Handle[T] wired with a codec
// appropriate to T; callers never construct one directly.
type Handle[T any] struct {
	store *flatstore.Store
	key   string
	def   T

	read   func(*flatstore.Snapshot) T
	write  func(*flatstore.Txn, T)
	remove func(*flatstore.Txn)

	// batchable is false only for handle variants that cannot safely
	// participate in a multi-key batch transaction.
	batchable bool
}

// newHandle panics if key is blank: every constructor in this package
// funnels through here (including Nullable and Mapped, which rebind an
// existing handle's already-validated key), so a blank key is rejected
// once, at construction time, rather than producing a handle silently
// bound to the empty key.
func newHandle[T any](
	store *flatstore.Store,
	key string,
	def T,
	read func(*flatstore.Snapshot) T,
	write func(*flatstore.Txn, T),
	remove func(*flatstore.Txn),
) *Handle[T] {
	if key == "" {
		panic(prefserr.InvalidArgument("prefs.newHandle", key, fmt.Errorf("key must not be blank")))
	}
	return &Handle[T]{
		store: store, key: key, def: def,
		read: read, write: write, remove: remove,
		batchable: true,
	}
}

// Key returns the underlying flat-backend cell key.
func (h *Handle[T]) Key() string { return h.key }

// Default returns the value this handle reads when its cell is absent.
func (h *Handle[T]) Default() T { return h.def }

// SupportsBatch reports whether this handle can participate in a
// pkg/batch transaction scope. All flat-backend handles support batch;
// the flag exists for symmetry with document whole-handle variants that
// don't.
func (h *Handle[T]) SupportsBatch() bool { return h.batchable }

// Store returns the backing flatstore.Store, for callers (the batch
// engine) that need to open a transaction spanning several handles.
func (h *Handle[T]) Store() *flatstore.Store { return h.store }

// ReadSnapshot projects this handle's value out of an arbitrary
// Snapshot. Used directly by read-only batch scopes.
func (h *Handle[T]) ReadSnapshot(s *flatstore.Snapshot) T { return h.read(s) }

// ReadTxn projects this handle's value out of an in-flight Txn draft,
// observing any writes already made against it. Used by batchUpdate
// scopes for read-your-writes.
func (h *Handle[T]) ReadTxn(tx *flatstore.Txn) T { return h.read(tx.Peek()) }

// WriteTxn applies a write for this handle inside an open Txn. Used
// directly by write batch scopes.
func (h *Handle[T]) WriteTxn(tx *flatstore.Txn, v T) { h.write(tx, v) }

// RemoveTxn removes this handle's cell inside an open Txn.
func (h *Handle[T]) RemoveTxn(tx *flatstore.Txn) { h.remove(tx) }

// Get reads the current value, honoring ctx cancellation before the
// (non-blocking) read.
func (h *Handle[T]) Get(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	return h.read(h.store.Current()), nil
}

// GetBlocking reads the current value with no cancellation path, for
// callers outside an async context.
func (h *Handle[T]) GetBlocking() T {
	return h.read(h.store.Current())
}

// Set durably writes v as this handle's value.
func (h *Handle[T]) Set(ctx context.Context, v T) error {
	return h.store.Commit(ctx, func(base *flatstore.Snapshot) *flatstore.Snapshot {
		tx := flatstore.NewTxn(base)
		h.write(tx, v)
		return tx.Snapshot()
	})
}

// SetBlocking drives Set to completion with no cancellation path.
func (h *Handle[T]) SetBlocking(v T) error {
	return h.Set(context.Background(), v)
}

// Update reads the current value, applies f, and durably writes the
// result. f runs against the snapshot the commit is based on, not a
// possibly-stale value read earlier by the caller.
func (h *Handle[T]) Update(ctx context.Context, f func(T) T) error {
	return h.store.Commit(ctx, func(base *flatstore.Snapshot) *flatstore.Snapshot {
		tx := flatstore.NewTxn(base)
		cur := h.read(base)
		h.write(tx, f(cur))
		return tx.Snapshot()
	})
}

// Delete removes this handle's cell. Subsequent reads return Default.
func (h *Handle[T]) Delete(ctx context.Context) error {
	return h.store.Commit(ctx, func(base *flatstore.Snapshot) *flatstore.Snapshot {
		tx := flatstore.NewTxn(base)
		h.remove(tx)
		return tx.Snapshot()
	})
}

// ResetToDefault removes this handle's cell so the next Get returns
// Default. For every flat-backend variant this has the exact same
// effect as Delete; it is kept as a distinct name because document
// field handles (pkg/docfield) implement "reset" as an explicit
// write-the-default rather than a true removal.
func (h *Handle[T]) ResetToDefault(ctx context.Context) error {
	return h.Delete(ctx)
}

// AsFlow subscribes to the store's reactive sequence and projects each
// published Snapshot through this handle's codec. The returned channel
// always delivers the current value as its first item. Call cancel to
// stop receiving and release resources.
func (h *Handle[T]) AsFlow(ctx context.Context) (<-chan T, func()) {
	raw, cancel := h.store.Observe(ctx)
	out := make(chan T, 1)
	go func() {
		defer close(out)
		for snap := range raw {
			v := h.read(snap)
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

// State is a hot observer over a Handle: it keeps a live, deduplicated
// value running in the background so readers that just want "the
// latest value" don't need to drive their own subscription loop.
type State[T any] struct {
	h      *Handle[T]
	cancel func()
	get    func() T
}

// StateFlow starts a background subscriber that tracks this handle's
// value, collapsing consecutive publications that are deeply equal so
// observers only see genuine changes. Call Stop to end it.
func (h *Handle[T]) StateFlow(ctx context.Context) *State[T] {
	raw, rawCancel := h.store.Observe(ctx)
	current := h.read(h.store.Current())

	type box struct{ v T }
	state := &box{v: current}
	var mu sync.Mutex

	go func() {
		for snap := range raw {
			v := h.read(snap)
			mu.Lock()
			if !reflect.DeepEqual(state.v, v) {
				state.v = v
			}
			mu.Unlock()
		}
	}()

	return &State[T]{
		h:      h,
		cancel: rawCancel,
		get: func() T {
			mu.Lock()
			defer mu.Unlock()
			return state.v
		},
	}
}

// Value returns the most recently observed value.
func (s *State[T]) Value() T { return s.get() }

// Stop ends the background subscription.
func (s *State[T]) Stop() { s.cancel() }
