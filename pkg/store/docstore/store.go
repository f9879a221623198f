package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cuemby/prefstore/pkg/log"
	"github.com/cuemby/prefstore/pkg/prefserr"
	"github.com/cuemby/prefstore/pkg/reactive"
)

// DefaultKey is the document's single logical key, used when a caller
// doesn't need more than one document instance of a given type.
const DefaultKey = "proto_datastore"

// Codec serializes and deserializes the opaque document. Callers supply
// one per document type D.
type Codec[D any] interface {
	Marshal(D) ([]byte, error)
	Unmarshal([]byte) (D, error)
}

// CommitObserver mirrors flatstore.CommitObserver; satisfied
// structurally by pkg/storemetrics.
type CommitObserver interface {
	ObserveCommit(backend string, duration time.Duration, err error)
}

// SubscriberObserver mirrors flatstore.SubscriberObserver; satisfied
// structurally by pkg/storemetrics.
type SubscriberObserver interface {
	ObserveSubscribers(backend string, count int)
}

// PathProducer resolves the document file's path at construction time.
type PathProducer func() (string, error)

type commitJob[D any] struct {
	ctx      context.Context
	fn       func(*Snapshot[D]) *Snapshot[D]
	resultCh chan error
}

// Store is the document backend's snapshot store. It
// mirrors flatstore.Store's single-writer-goroutine concurrency model
// but persists one opaque file instead of a bucket of typed cells.
type Store[D any] struct {
	name       string
	path       string
	codec      Codec[D]
	defaultDoc D
	current    atomic.Pointer[Snapshot[D]]
	stream     *reactive.Stream[*Snapshot[D]]
	observer   CommitObserver
	jobs       chan *commitJob[D]
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// Option configures a Store at construction time.
type Option[D any] func(*Store[D])

func WithCommitObserver[D any](obs CommitObserver) Option[D] {
	return func(s *Store[D]) { s.observer = obs }
}

// Open creates or loads the document store at the path resolved by
// producer. defaultDoc is returned whenever the file is absent or
// fails to parse.
func Open[D any](name string, producer PathProducer, codec Codec[D], defaultDoc D, opts ...Option[D]) (*Store[D], error) {
	path, err := producer()
	if err != nil {
		return nil, prefserr.Io("open", "", fmt.Errorf("resolve path: %w", err))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, prefserr.Io("open", "", fmt.Errorf("create data dir: %w", err))
		}
	}

	s := &Store[D]{
		name:       name,
		path:       path,
		codec:      codec,
		defaultDoc: defaultDoc,
		jobs:       make(chan *commitJob[D]),
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	doc := s.load()
	initial := &Snapshot[D]{Doc: doc}
	s.current.Store(initial)
	s.stream = reactive.NewStream(initial)

	go s.writerLoop()
	return s, nil
}

func (s *Store[D]) load() D {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithBackend(s.name).Warn().Err(err).Msg("docstore: document unreadable, using default")
		}
		return s.defaultDoc
	}
	doc, err := s.codec.Unmarshal(data)
	if err != nil {
		log.WithBackend(s.name).Debug().Err(err).Msg("docstore: corrupted document, using default")
		return s.defaultDoc
	}
	return doc
}

// Current returns the latest committed Snapshot.
func (s *Store[D]) Current() *Snapshot[D] {
	return s.current.Load()
}

// Observe subscribes to the document's snapshot stream.
func (s *Store[D]) Observe(ctx context.Context) (<-chan *Snapshot[D], func()) {
	ch, cancel := s.stream.Subscribe(ctx)
	s.reportSubscribers()
	return ch, func() {
		cancel()
		s.reportSubscribers()
	}
}

func (s *Store[D]) reportSubscribers() {
	if obs, ok := s.observer.(SubscriberObserver); ok {
		obs.ObserveSubscribers(s.name, s.stream.SubscriberCount())
	}
}

// Commit runs f against the current Snapshot and durably persists its
// result as the new current Snapshot. See flatstore.Store.Commit for
// the concurrency and cancellation contract, which is identical here.
func (s *Store[D]) Commit(ctx context.Context, f func(*Snapshot[D]) *Snapshot[D]) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := prefserr.FromContext("commit", ctx); err != nil {
		return err
	}

	job := &commitJob[D]{ctx: ctx, fn: f, resultCh: make(chan error, 1)}
	select {
	case s.jobs <- job:
	case <-ctx.Done():
		return prefserr.Cancellation("commit", ctx.Err())
	case <-s.stopCh:
		return prefserr.Io("commit", "", fmt.Errorf("store closed"))
	}

	select {
	case err := <-job.resultCh:
		return err
	case <-ctx.Done():
		return prefserr.Cancellation("commit", ctx.Err())
	}
}

// CommitBlocking drives Commit to completion with no cancellation path.
func (s *Store[D]) CommitBlocking(f func(*Snapshot[D]) *Snapshot[D]) error {
	return s.Commit(context.Background(), f)
}

func (s *Store[D]) writerLoop() {
	for {
		select {
		case job := <-s.jobs:
			s.runJob(job)
		case <-s.stopCh:
			return
		}
	}
}

func (s *Store[D]) runJob(job *commitJob[D]) {
	base := s.Current()
	next := job.fn(base)

	start := time.Now()
	err := s.persist(next.Doc)
	dur := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveCommit(s.name, dur, err)
	}

	if err != nil {
		job.resultCh <- prefserr.Io("commit", "", err)
		return
	}
	s.current.Store(next)
	s.stream.Publish(next)
	job.resultCh <- nil
}

// persist writes doc to disk via a temp file in the same directory
// followed by an atomic rename, so a crash mid-write never leaves a
// partially-written document in place.
func (s *Store[D]) persist(doc D) error {
	data, err := s.codec.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".docstore-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}

// Close stops the writer goroutine and detaches all subscribers.
func (s *Store[D]) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.stream.Close()
	})
	return nil
}
