package datastore

import (
	"context"

	"github.com/cuemby/prefstore/pkg/backup"
	"github.com/cuemby/prefstore/pkg/batch"
	"github.com/cuemby/prefstore/pkg/cell"
	"github.com/cuemby/prefstore/pkg/prefs"
	"github.com/cuemby/prefstore/pkg/store/flatstore"
)

// Migration transforms the flat backend's very first snapshot before
// it is stored or published. Construction fails (and the store is
// closed) if the migration's commit fails.
type Migration func(*flatstore.Snapshot) *flatstore.Snapshot

// preferencesConfig accumulates options passed to PreferencesDatastore.
type preferencesConfig struct {
	migration  Migration
	observer   flatstore.CommitObserver
	classifier backup.Classifier
}

// Option configures a Preferences datastore at construction time.
type Option func(*preferencesConfig)

// WithMigration runs m once against the store's first loaded snapshot,
// before it is published to any observer.
func WithMigration(m Migration) Option {
	return func(c *preferencesConfig) { c.migration = m }
}

// WithCommitObserver attaches a commit observer (pkg/storemetrics.Collector
// satisfies this structurally) to every commit this store performs.
func WithCommitObserver(obs flatstore.CommitObserver) Option {
	return func(c *preferencesConfig) { c.observer = obs }
}

// WithClassifier sets the key classifier used by Export/Import and
// ExportMap/ImportMap. The zero Classifier (backup.None()) treats every
// key as neither private nor app-state.
func WithClassifier(classifier backup.Classifier) Option {
	return func(c *preferencesConfig) { c.classifier = classifier }
}

// Preferences is the flat-backend datastore: it hosts a flatstore.Store
// and is the entry point for every primitive, codec-backed, mapped, and
// nullable handle, plus the batch and backup engines bound to it.
type Preferences struct {
	store      *flatstore.Store
	classifier backup.Classifier
}

// PreferencesDatastore opens (or creates) the flat backend at the path
// producer resolves. name identifies the backend in logs and metrics.
func PreferencesDatastore(name string, producer flatstore.PathProducer, opts ...Option) (*Preferences, error) {
	cfg := &preferencesConfig{classifier: backup.None()}
	for _, opt := range opts {
		opt(cfg)
	}

	var storeOpts []flatstore.Option
	if cfg.observer != nil {
		storeOpts = append(storeOpts, flatstore.WithCommitObserver(cfg.observer))
	}

	store, err := flatstore.Open(name, producer, storeOpts...)
	if err != nil {
		return nil, err
	}

	if cfg.migration != nil {
		if err := store.CommitBlocking(cfg.migration); err != nil {
			store.Close()
			return nil, err
		}
	}

	return &Preferences{store: store, classifier: cfg.classifier}, nil
}

// Store returns the backing flatstore.Store, for the free generic
// handle constructors in this package (Enum, Serialized, List, ...).
func (p *Preferences) Store() *flatstore.Store { return p.store }

// Close shuts down the store's writer goroutine and detaches every
// subscriber.
func (p *Preferences) Close() error { return p.store.Close() }

func (p *Preferences) Bool(key string, def bool) *prefs.Handle[bool] {
	return prefs.Bool(p.store, key, def)
}

func (p *Preferences) Int32(key string, def int32) *prefs.Handle[int32] {
	return prefs.Int32(p.store, key, def)
}

func (p *Preferences) Int64(key string, def int64) *prefs.Handle[int64] {
	return prefs.Int64(p.store, key, def)
}

func (p *Preferences) Float32(key string, def float32) *prefs.Handle[float32] {
	return prefs.Float32(p.store, key, def)
}

func (p *Preferences) Float64(key string, def float64) *prefs.Handle[float64] {
	return prefs.Float64(p.store, key, def)
}

func (p *Preferences) String(key string, def string) *prefs.Handle[string] {
	return prefs.String(p.store, key, def)
}

func (p *Preferences) StringSet(key string, def cell.StringSet) *prefs.Handle[cell.StringSet] {
	return prefs.StringSet(p.store, key, def)
}

// Read runs fn against a read-only batch scope over the current snapshot.
func (p *Preferences) Read(fn func(*batch.ReadScope)) {
	batch.Read(p.store, fn)
}

// Write opens one batch transaction, runs fn, and commits it as a
// single durable write.
func (p *Preferences) Write(ctx context.Context, fn func(*batch.WriteScope)) error {
	return batch.Write(ctx, p.store, fn)
}

// Update opens one batch transaction exposing both a read scope (over
// the transaction's live draft, so reads see earlier writes in the same
// block) and a write scope to record the result.
func (p *Preferences) Update(ctx context.Context, fn func(*batch.ReadScope, *batch.WriteScope)) error {
	return batch.Update(ctx, p.store, fn)
}

// Export returns the tagged-JSON backup of every key passing this
// datastore's classifier.
func (p *Preferences) Export(exportPrivate, exportAppState bool) ([]byte, error) {
	return backup.Export(p.store, p.classifier, exportPrivate, exportAppState)
}

// Import applies a tagged-JSON backup in a single commit, routed
// through the same single-Txn commit the batch engine uses.
func (p *Preferences) Import(ctx context.Context, data []byte, importPrivate, importAppState bool) error {
	return backup.Import(ctx, p.store, data, p.classifier, importPrivate, importAppState)
}

// ExportMap returns the free-form map[string]any variant of Export.
func (p *Preferences) ExportMap(exportPrivate, exportAppState bool) map[string]any {
	return backup.ExportMap(p.store, p.classifier, exportPrivate, exportAppState)
}

// ImportMap applies the free-form map[string]any variant of Import.
func (p *Preferences) ImportMap(ctx context.Context, m map[string]any, importPrivate, importAppState bool) error {
	return backup.ImportMap(ctx, p.store, m, p.classifier, importPrivate, importAppState)
}
