package flatstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cuemby/prefstore/pkg/cell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempProducer(t *testing.T) PathProducer {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prefs.db")
	return func() (string, error) { return path, nil }
}

func TestOpenCreatesEmptyStore(t *testing.T) {
	s, err := Open("prefs", tempProducer(t))
	require.NoError(t, err)
	defer s.Close()

	assert.Empty(t, s.Current().Keys())
}

func TestCommitPersistsAndPublishes(t *testing.T) {
	s, err := Open("prefs", tempProducer(t))
	require.NoError(t, err)
	defer s.Close()

	ch, cancel := s.Observe(context.Background())
	defer cancel()
	<-ch // initial empty snapshot

	err = s.CommitBlocking(func(base *Snapshot) *Snapshot {
		tx := NewTxn(base)
		tx.Put("theme", cell.String("dark"))
		return tx.Snapshot()
	})
	require.NoError(t, err)

	v, ok := s.Current().Get("theme")
	require.True(t, ok)
	assert.Equal(t, "dark", v.S)

	next := <-ch
	nv, ok := next.Get("theme")
	require.True(t, ok)
	assert.Equal(t, "dark", nv.S)
}

func TestCommitSurvivesReopen(t *testing.T) {
	producer := tempProducer(t)

	s, err := Open("prefs", producer)
	require.NoError(t, err)
	err = s.CommitBlocking(func(base *Snapshot) *Snapshot {
		tx := NewTxn(base)
		tx.Put("count", cell.Int32(5))
		return tx.Snapshot()
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open("prefs", producer)
	require.NoError(t, err)
	defer s2.Close()

	v, ok := s2.Current().Get("count")
	require.True(t, ok)
	assert.Equal(t, int32(5), v.I32)
}

func TestCorruptedFileYieldsEmptySnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prefs.db")
	require.NoError(t, os.WriteFile(path, []byte("not a bolt database"), 0o600))

	s, err := Open("prefs", func() (string, error) { return path, nil })
	require.NoError(t, err)
	defer s.Close()

	assert.Empty(t, s.Current().Keys())
}

func TestCommitRespectsContextCancellation(t *testing.T) {
	s, err := Open("prefs", tempProducer(t))
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.Commit(ctx, func(base *Snapshot) *Snapshot { return base })
	assert.Error(t, err)
}

func TestTxnReadYourWrites(t *testing.T) {
	base := emptySnapshot()
	tx := NewTxn(base)
	tx.Put("a", cell.Int32(1))

	v, ok := tx.Get("a")
	require.True(t, ok)
	assert.Equal(t, int32(1), v.I32)

	tx.Delete("a")
	_, ok = tx.Get("a")
	assert.False(t, ok)
}

func TestTxnPeekReflectsLaterWrites(t *testing.T) {
	base := emptySnapshot()
	tx := NewTxn(base)
	tx.Put("a", cell.Int32(1))
	peek := tx.Peek()

	tx.Put("a", cell.Int32(2))
	v, ok := peek.Get("a")
	require.True(t, ok)
	assert.Equal(t, int32(2), v.I32, "Peek must stay live, unlike Snapshot's frozen copy")
}

type fakeSubscriberObserver struct {
	backend string
	counts  []int
}

func (f *fakeSubscriberObserver) ObserveCommit(backend string, duration time.Duration, err error) {}
func (f *fakeSubscriberObserver) ObserveSubscribers(backend string, count int) {
	f.backend = backend
	f.counts = append(f.counts, count)
}

func TestObserveReportsSubscriberCountOnSubscribeAndCancel(t *testing.T) {
	obs := &fakeSubscriberObserver{}
	s, err := Open("prefs", tempProducer(t), WithCommitObserver(obs))
	require.NoError(t, err)
	defer s.Close()

	_, cancel := s.Observe(context.Background())
	assert.Equal(t, "prefs", obs.backend)
	assert.Equal(t, []int{1}, obs.counts)

	cancel()
	assert.Equal(t, []int{1, 0}, obs.counts)
}

func TestTxnSnapshotIsIndependentCopy(t *testing.T) {
	base := emptySnapshot()
	tx := NewTxn(base)
	tx.Put("a", cell.Int32(1))
	snap := tx.Snapshot()

	tx.Put("a", cell.Int32(2))
	v, ok := snap.Get("a")
	require.True(t, ok)
	assert.Equal(t, int32(1), v.I32, "freezing a Txn must not be affected by further mutation")
}
