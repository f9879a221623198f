package docstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settings struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v settings) ([]byte, error)    { return json.Marshal(v) }
func (jsonCodec) Unmarshal(b []byte) (settings, error) {
	var v settings
	err := json.Unmarshal(b, &v)
	return v, err
}

func tempProducer(t *testing.T) PathProducer {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	return func() (string, error) { return path, nil }
}

func TestOpenReturnsDefaultWhenFileMissing(t *testing.T) {
	s, err := Open[settings]("proto", tempProducer(t), jsonCodec{}, settings{Name: "default"})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, settings{Name: "default"}, s.Current().Doc)
}

func TestCommitPersistsAtomically(t *testing.T) {
	producer := tempProducer(t)
	s, err := Open[settings]("proto", producer, jsonCodec{}, settings{})
	require.NoError(t, err)

	err = s.CommitBlocking(func(base *Snapshot[settings]) *Snapshot[settings] {
		tx := NewTxn(base)
		tx.Doc.Name = "alice"
		tx.Doc.Count = 3
		return tx.Snapshot()
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open[settings]("proto", producer, jsonCodec{}, settings{})
	require.NoError(t, err)
	defer s2.Close()
	assert.Equal(t, settings{Name: "alice", Count: 3}, s2.Current().Doc)
}

func TestCorruptedDocumentFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := Open[settings]("proto", func() (string, error) { return path, nil }, jsonCodec{}, settings{Name: "fallback"})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, settings{Name: "fallback"}, s.Current().Doc)
}

func TestObserveDeliversCurrentThenUpdates(t *testing.T) {
	s, err := Open[settings]("proto", tempProducer(t), jsonCodec{}, settings{})
	require.NoError(t, err)
	defer s.Close()

	ch, cancel := s.Observe(context.Background())
	defer cancel()
	first := <-ch
	assert.Equal(t, settings{}, first.Doc)

	require.NoError(t, s.CommitBlocking(func(base *Snapshot[settings]) *Snapshot[settings] {
		tx := NewTxn(base)
		tx.Doc.Count = 9
		return tx.Snapshot()
	}))

	next := <-ch
	assert.Equal(t, 9, next.Doc.Count)
}
