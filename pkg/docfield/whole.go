package docfield

import (
	"context"

	"github.com/cuemby/prefstore/pkg/store/docstore"
)

// WholeDocument is a handle over an entire document D rather than one
// projected field. It offers Get/Set/Update/ResetToDefault/AsFlow like
// Field, but has none of Field's ReadTxn/WriteTxn/RemoveTxn transaction
// accessors and always reports SupportsBatch() == false: a batch transaction composes
// several independent handles into one commit, and a handle that
// already spans the full document has nothing left to compose with.
// Replace the whole document through Set/Update directly instead of
// inside a batch scope.
type WholeDocument[D any] struct {
	store *docstore.Store[D]
	def   D
}

// NewWholeDocument binds a whole-document handle to store.
func NewWholeDocument[D any](store *docstore.Store[D], def D) *WholeDocument[D] {
	return &WholeDocument[D]{store: store, def: def}
}

func (w *WholeDocument[D]) SupportsBatch() bool        { return false }
func (w *WholeDocument[D]) Store() *docstore.Store[D]  { return w.store }
func (w *WholeDocument[D]) Default() D                 { return w.def }

// Get returns the current document, honoring ctx cancellation.
func (w *WholeDocument[D]) Get(ctx context.Context) (D, error) {
	if err := ctx.Err(); err != nil {
		var zero D
		return zero, err
	}
	return w.store.Current().Doc, nil
}

// GetBlocking returns the current document with no cancellation path.
func (w *WholeDocument[D]) GetBlocking() D {
	return w.store.Current().Doc
}

// Set durably replaces the whole document with doc.
func (w *WholeDocument[D]) Set(ctx context.Context, doc D) error {
	return w.store.Commit(ctx, func(base *docstore.Snapshot[D]) *docstore.Snapshot[D] {
		return &docstore.Snapshot[D]{Doc: doc}
	})
}

// SetBlocking drives Set to completion with no cancellation path.
func (w *WholeDocument[D]) SetBlocking(doc D) error {
	return w.Set(context.Background(), doc)
}

// Update reads the current document, applies fn, and durably writes the
// result.
func (w *WholeDocument[D]) Update(ctx context.Context, fn func(D) D) error {
	return w.store.Commit(ctx, func(base *docstore.Snapshot[D]) *docstore.Snapshot[D] {
		return &docstore.Snapshot[D]{Doc: fn(base.Doc)}
	})
}

// ResetToDefault replaces the whole document with its default value.
func (w *WholeDocument[D]) ResetToDefault(ctx context.Context) error {
	return w.Set(ctx, w.def)
}

// AsFlow subscribes to the document's reactive sequence, delivering the
// whole document on every change.
func (w *WholeDocument[D]) AsFlow(ctx context.Context) (<-chan D, func()) {
	raw, cancel := w.store.Observe(ctx)
	out := make(chan D, 1)
	go func() {
		defer close(out)
		for snap := range raw {
			select {
			case out <- snap.Doc:
			default:
				select {
				case <-out:
				default:
				}
				out <- snap.Doc
			}
		}
	}()
	return out, cancel
}
