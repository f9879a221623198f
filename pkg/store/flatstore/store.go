package flatstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cuemby/prefstore/pkg/cell"
	"github.com/cuemby/prefstore/pkg/log"
	"github.com/cuemby/prefstore/pkg/prefserr"
	"github.com/cuemby/prefstore/pkg/reactive"
	bolt "go.etcd.io/bbolt"
)

var bucketCells = []byte("cells")

// CommitObserver receives one notification per attempted commit, for
// metrics instrumentation. It is satisfied structurally — pkg/storemetrics
// implements it without either package importing the other.
type CommitObserver interface {
	ObserveCommit(backend string, duration time.Duration, err error)
}

// SubscriberObserver receives the live subscriber count after every
// Observe/cancel, for metrics instrumentation. Satisfied structurally,
// the same way as CommitObserver; an observer that only implements
// CommitObserver simply isn't asked for subscriber counts.
type SubscriberObserver interface {
	ObserveSubscribers(backend string, count int)
}

// PathProducer resolves the on-disk file path at Store construction
// time. The core never resolves platform-specific directories itself;
// this is supplied by the caller.
type PathProducer func() (string, error)

type commitJob struct {
	ctx      context.Context
	fn       func(*Snapshot) *Snapshot
	resultCh chan error
}

// Store is the flat backend's snapshot store. All commits
// are serialized through a single writer goroutine; reads load the
// current Snapshot off an atomic pointer and never block on writers.
type Store struct {
	name     string
	db       *bolt.DB
	current  atomic.Pointer[Snapshot]
	stream   *reactive.Stream[*Snapshot]
	observer CommitObserver
	jobs     chan *commitJob
	stopCh   chan struct{}
	stopOnce sync.Once
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithCommitObserver attaches a metrics hook invoked after every commit
// attempt, successful or not.
func WithCommitObserver(obs CommitObserver) Option {
	return func(s *Store) { s.observer = obs }
}

// Open creates or loads the flat backend database at the path resolved
// by producer. name identifies the backend instance in logs and metrics.
func Open(name string, producer PathProducer, opts ...Option) (*Store, error) {
	path, err := producer()
	if err != nil {
		return nil, prefserr.Io("open", "", fmt.Errorf("resolve path: %w", err))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, prefserr.Io("open", "", fmt.Errorf("create data dir: %w", err))
		}
	}

	db, err := openRecovering(path)
	if err != nil {
		return nil, prefserr.Io("open", "", err)
	}

	s := &Store{
		name:   name,
		db:     db,
		jobs:   make(chan *commitJob),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	initial, err := loadSnapshot(db)
	if err != nil {
		// A structurally valid bbolt file with an unreadable bucket is
		// treated the same as a corrupted file: start from empty rather
		// than propagating to reading handles.
		log.WithBackend(name).Warn().Err(err).Msg("flatstore: bucket unreadable, starting from empty snapshot")
		initial = emptySnapshot()
	}
	s.current.Store(initial)
	s.stream = reactive.NewStream(initial)

	go s.writerLoop()
	return s, nil
}

// openRecovering opens path as a bbolt database, recreating it from
// scratch if the existing file is corrupted rather than surfacing the
// corruption to callers.
func openRecovering(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err == nil {
		return db, nil
	}
	log.WithBackend(filepath.Base(path)).Warn().Err(err).Msg("flatstore: database file unreadable, resetting")
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		return nil, fmt.Errorf("open %s: %w (reset also failed: %v)", path, err, rmErr)
	}
	db, err2 := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err2 != nil {
		return nil, fmt.Errorf("open %s after reset: %w", path, err2)
	}
	return db, nil
}

func loadSnapshot(db *bolt.DB) (*Snapshot, error) {
	snap := emptySnapshot()
	err := db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketCells)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			val, err := cell.Unmarshal(v)
			if err != nil {
				log.WithKey(string(k)).Debug().Err(err).Msg("flatstore: corrupted cell, treating as absent")
				return nil
			}
			snap.cells[string(k)] = val
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Current returns the latest committed Snapshot.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Observe subscribes to the snapshot stream; a fresh subscriber always
// receives Current() as its first delivery.
func (s *Store) Observe(ctx context.Context) (<-chan *Snapshot, func()) {
	ch, cancel := s.stream.Subscribe(ctx)
	s.reportSubscribers()
	return ch, func() {
		cancel()
		s.reportSubscribers()
	}
}

func (s *Store) reportSubscribers() {
	if obs, ok := s.observer.(SubscriberObserver); ok {
		obs.ObserveSubscribers(s.name, s.stream.SubscriberCount())
	}
}

// Commit runs f against the current Snapshot and durably persists and
// publishes its result as the new current Snapshot, even when the
// result is unchanged — f's return value is always written back, not
// diffed against the base. Commits from concurrent callers are
// serialized by the store's single writer goroutine.
func (s *Store) Commit(ctx context.Context, f func(*Snapshot) *Snapshot) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := prefserr.FromContext("commit", ctx); err != nil {
		return err
	}

	job := &commitJob{ctx: ctx, fn: f, resultCh: make(chan error, 1)}
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
		// The job is already queued/running; it always runs to
		// completion so durability is never left half-applied. We just
		// stop waiting for the result here.
		return prefserr.Cancellation("commit", ctx.Err())
	}
}

// CommitBlocking drives Commit to completion on the caller's goroutine
// with no cancellation path, for callers outside an async context.
func (s *Store) CommitBlocking(f func(*Snapshot) *Snapshot) error {
	return s.Commit(context.Background(), f)
}

func (s *Store) writerLoop() {
	for {
		select {
		case job := <-s.jobs:
			s.runJob(job)
		case <-s.stopCh:
			return
		}
	}
}

func (s *Store) runJob(job *commitJob) {
	base := s.Current()
	next := job.fn(base)

	start := time.Now()
	err := s.persist(next)
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

// persist writes next's full cell set to bbolt in one Update
// transaction. Preference datasets are small enough that a
// delete-and-rewrite-bucket strategy is simpler and just as durable as
// an incremental diff, and it keeps the on-disk bucket exactly in sync
// with the in-memory Snapshot it replaces.
func (s *Store) persist(next *Snapshot) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketCells); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		b, err := tx.CreateBucket(bucketCells)
		if err != nil {
			return err
		}
		for k, v := range next.cells {
			data, err := cell.Marshal(v)
			if err != nil {
				return fmt.Errorf("marshal cell %q: %w", k, err)
			}
			if err := b.Put([]byte(k), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close stops the writer goroutine, detaches all observers, and closes
// the underlying database file.
func (s *Store) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.stream.Close()
	})
	return s.db.Close()
}
