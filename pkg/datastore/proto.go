package datastore

import (
	"context"

	"github.com/cuemby/prefstore/pkg/batch"
	"github.com/cuemby/prefstore/pkg/docfield"
	"github.com/cuemby/prefstore/pkg/store/docstore"
)

// DocMigration transforms the document backend's very first loaded
// document before it is stored or published.
type DocMigration[D any] func(D) D

type protoConfig[D any] struct {
	migration DocMigration[D]
	observer  docstore.CommitObserver
}

// ProtoOption configures a Proto[D] datastore at construction time.
type ProtoOption[D any] func(*protoConfig[D])

// WithDocMigration runs m once against the document loaded at
// construction, before it is published to any observer.
func WithDocMigration[D any](m DocMigration[D]) ProtoOption[D] {
	return func(c *protoConfig[D]) { c.migration = m }
}

// WithDocCommitObserver attaches a commit observer to every commit this
// store performs.
func WithDocCommitObserver[D any](obs docstore.CommitObserver) ProtoOption[D] {
	return func(c *protoConfig[D]) { c.observer = obs }
}

// Proto is the document-backend datastore: it hosts a docstore.Store[D]
// holding a single opaque document and is the entry point for field
// projections, the whole-document handle, and the batch engine.
type Proto[D any] struct {
	store      *docstore.Store[D]
	defaultDoc D
}

// ProtoDatastore opens (or creates) the document backend at the path
// producer resolves, using codec to (de)serialize D and defaultDoc
// whenever the file is absent, corrupted, or not yet migrated.
func ProtoDatastore[D any](name string, producer docstore.PathProducer, codec docstore.Codec[D], defaultDoc D, opts ...ProtoOption[D]) (*Proto[D], error) {
	cfg := &protoConfig[D]{}
	for _, opt := range opts {
		opt(cfg)
	}

	var storeOpts []docstore.Option[D]
	if cfg.observer != nil {
		storeOpts = append(storeOpts, docstore.WithCommitObserver[D](cfg.observer))
	}

	store, err := docstore.Open(name, producer, codec, defaultDoc, storeOpts...)
	if err != nil {
		return nil, err
	}

	if cfg.migration != nil {
		migrate := cfg.migration
		if err := store.CommitBlocking(func(base *docstore.Snapshot[D]) *docstore.Snapshot[D] {
			return &docstore.Snapshot[D]{Doc: migrate(base.Doc)}
		}); err != nil {
			store.Close()
			return nil, err
		}
	}

	return &Proto[D]{store: store, defaultDoc: defaultDoc}, nil
}

// Store returns the backing docstore.Store, for the free generic
// constructors in this package (Field, DocReadFlow).
func (ds *Proto[D]) Store() *docstore.Store[D] { return ds.store }

// Close shuts down the store's writer goroutine and detaches every
// subscriber.
func (ds *Proto[D]) Close() error { return ds.store.Close() }

// Document returns the whole-document handle, seeded with the default
// this datastore was constructed with. Unlike a Field, it always
// reports SupportsBatch() == false.
func (ds *Proto[D]) Document() *docfield.WholeDocument[D] {
	return docfield.NewWholeDocument(ds.store, ds.defaultDoc)
}

// Read runs fn against a read-only batch scope over the current document.
func (ds *Proto[D]) Read(fn func(*batch.DocReadScope[D])) {
	batch.DocRead(ds.store, fn)
}

// Write opens one batch transaction over the document, runs fn, and
// commits it as a single durable write.
func (ds *Proto[D]) Write(ctx context.Context, fn func(*batch.DocWriteScope[D])) error {
	return batch.DocWrite(ctx, ds.store, fn)
}

// Update opens one batch transaction exposing both a read scope (over
// the transaction's live draft document, so reads see earlier writes in
// the same block) and a write scope to record the result.
func (ds *Proto[D]) Update(ctx context.Context, fn func(*batch.DocReadScope[D], *batch.DocWriteScope[D])) error {
	return batch.DocUpdate(ctx, ds.store, fn)
}

// Field projects one logical field T out of document D via a
// getter/updater pair. A type parameter beyond D itself forces this to
// be a free function rather than a method, mirroring pkg/batch.DocGet.
func Field[D, T any](ds *Proto[D], def T, get func(D) T, update func(D, T) D) *docfield.Field[D, T] {
	return docfield.NewField(ds.store, def, get, update)
}

// DocReadFlow re-runs project against every published document,
// combining any number of ds's fields into one derived reactive value.
func DocReadFlow[D, T any](ctx context.Context, ds *Proto[D], project func(*batch.DocReadScope[D]) T) (<-chan T, func()) {
	return batch.DocReadFlow(ctx, ds.store, project)
}
