package docfield

import (
	"context"
	"reflect"
	"sync"

	"github.com/cuemby/prefstore/pkg/store/docstore"
)

// Field is a typed lens onto one piece of a document D, bound to a
// specific docstore.Store[D]. Get is a getter func(D) T; Update is an
// updater func(D, T) D that returns a copy of the document with the
// field replaced.
type Field[D, T any] struct {
	store   *docstore.Store[D]
	def     T
	get     func(D) T
	update  func(D, T) D
}

// NewField binds a getter/updater pair to store, with def as the value
// ResetToDefault writes back.
func NewField[D, T any](store *docstore.Store[D], def T, get func(D) T, update func(D, T) D) *Field[D, T] {
	return &Field[D, T]{store: store, def: def, get: get, update: update}
}

// SupportsBatch reports whether this handle can participate in a
// pkg/batch transaction scope. Field handles always can; only
// WholeDocument cannot.
func (f *Field[D, T]) SupportsBatch() bool { return true }

// Store returns the backing docstore.Store, for the batch engine.
func (f *Field[D, T]) Store() *docstore.Store[D] { return f.store }

// Default returns the value ResetToDefault writes.
func (f *Field[D, T]) Default() T { return f.def }

// ReadSnapshot projects this field out of an arbitrary Snapshot.
func (f *Field[D, T]) ReadSnapshot(s *docstore.Snapshot[D]) T { return f.get(s.Doc) }

// ReadTxn projects this field out of an in-flight Txn draft, observing
// any writes already made against it. Used by batchUpdate scopes for
// read-your-writes.
func (f *Field[D, T]) ReadTxn(tx *docstore.Txn[D]) T { return f.get(tx.Doc) }

// WriteTxn applies this field's updater inside an open Txn.
func (f *Field[D, T]) WriteTxn(tx *docstore.Txn[D], v T) { tx.Doc = f.update(tx.Doc, v) }

// RemoveTxn resets this field to its default inside an open Txn. A
// document field can never be truly absent, so "remove" here means
// "write the default", matching ResetToDefault exactly.
func (f *Field[D, T]) RemoveTxn(tx *docstore.Txn[D]) { f.WriteTxn(tx, f.def) }

// Get reads the current field value, honoring ctx cancellation.
func (f *Field[D, T]) Get(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	return f.get(f.store.Current().Doc), nil
}

// GetBlocking reads the current field value with no cancellation path.
func (f *Field[D, T]) GetBlocking() T {
	return f.get(f.store.Current().Doc)
}

// Set durably writes v into this field.
func (f *Field[D, T]) Set(ctx context.Context, v T) error {
	return f.store.Commit(ctx, func(base *docstore.Snapshot[D]) *docstore.Snapshot[D] {
		tx := docstore.NewTxn(base)
		f.WriteTxn(tx, v)
		return tx.Snapshot()
	})
}

// SetBlocking drives Set to completion with no cancellation path.
func (f *Field[D, T]) SetBlocking(v T) error {
	return f.Set(context.Background(), v)
}

// Update reads the current field value, applies fn, and durably writes
// the result.
func (f *Field[D, T]) Update(ctx context.Context, fn func(T) T) error {
	return f.store.Commit(ctx, func(base *docstore.Snapshot[D]) *docstore.Snapshot[D] {
		tx := docstore.NewTxn(base)
		cur := f.get(base.Doc)
		f.WriteTxn(tx, fn(cur))
		return tx.Snapshot()
	})
}

// Delete resets this field to its default value. For a document field
// this is identical to ResetToDefault, since a field can never be
// truly absent.
func (f *Field[D, T]) Delete(ctx context.Context) error {
	return f.Set(ctx, f.def)
}

// ResetToDefault writes this field's default value back through its
// updater lens.
func (f *Field[D, T]) ResetToDefault(ctx context.Context) error {
	return f.Set(ctx, f.def)
}

// AsFlow subscribes to the document's reactive sequence and projects
// each published Snapshot through this field's getter.
func (f *Field[D, T]) AsFlow(ctx context.Context) (<-chan T, func()) {
	raw, cancel := f.store.Observe(ctx)
	out := make(chan T, 1)
	go func() {
		defer close(out)
		for snap := range raw {
			v := f.get(snap.Doc)
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

// State is a hot, deduplicated observer over a Field.
type State[T any] struct {
	get    func() T
	cancel func()
}

// StateFlow starts a background subscriber tracking this field's value,
// collapsing deeply-equal consecutive publications.
func (f *Field[D, T]) StateFlow(ctx context.Context) *State[T] {
	raw, cancel := f.store.Observe(ctx)
	current := f.get(f.store.Current().Doc)

	type box struct{ v T }
	state := &box{v: current}
	var mu sync.Mutex

	go func() {
		for snap := range raw {
			v := f.get(snap.Doc)
			mu.Lock()
			if !reflect.DeepEqual(state.v, v) {
				state.v = v
			}
			mu.Unlock()
		}
	}()

	return &State[T]{
		cancel: cancel,
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
