package backup

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cuemby/prefstore/pkg/cell"
	"github.com/cuemby/prefstore/pkg/store/flatstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *flatstore.Store {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prefs.db")
	s, err := flatstore.Open("prefs", func() (string, error) { return path, nil })
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func put(t *testing.T, s *flatstore.Store, key string, v cell.Value) {
	t.Helper()
	require.NoError(t, s.CommitBlocking(func(base *flatstore.Snapshot) *flatstore.Snapshot {
		tx := flatstore.NewTxn(base)
		tx.Put(key, v)
		return tx.Snapshot()
	}))
}

func TestExportExactJSONShape(t *testing.T) {
	s := newTestStore(t)
	put(t, s, "a", cell.Int32(42))
	put(t, s, "b", cell.String("x"))

	data, err := Export(s, None(), true, true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"preferences":[
		{"key":"a","value":{"type":"int","value":42}},
		{"key":"b","value":{"type":"string","value":"x"}}
	]}`, string(data))
}

func TestImportRestoresExportedValues(t *testing.T) {
	s := newTestStore(t)
	put(t, s, "a", cell.Int32(42))
	put(t, s, "b", cell.String("x"))

	data, err := Export(s, None(), true, true)
	require.NoError(t, err)

	s2 := newTestStore(t)
	require.NoError(t, Import(context.Background(), s2, data, None(), true, true))

	v, ok := s2.Current().Get("a")
	require.True(t, ok)
	assert.Equal(t, int32(42), v.I32)
	v, ok = s2.Current().Get("b")
	require.True(t, ok)
	assert.Equal(t, "x", v.S)
}

func TestImportRejectsEntryWithUnrecognizedTagButCommitsSurvivors(t *testing.T) {
	s := newTestStore(t)
	data := []byte(`{"preferences":[
		{"key":"good","value":{"type":"int","value":1}},
		{"key":"bad","value":{"type":"nonsense","value":1}}
	]}`)
	err := Import(context.Background(), s, data, None(), true, true)
	require.NoError(t, err)

	v, ok := s.Current().Get("good")
	require.True(t, ok)
	assert.Equal(t, int32(1), v.I32)
	_, ok = s.Current().Get("bad")
	assert.False(t, ok)
}

func TestImportParseFailureDoesNotMutateState(t *testing.T) {
	s := newTestStore(t)
	put(t, s, "existing", cell.Int32(1))

	err := Import(context.Background(), s, []byte("not json"), None(), true, true)
	assert.Error(t, err)

	v, ok := s.Current().Get("existing")
	require.True(t, ok)
	assert.Equal(t, int32(1), v.I32)
}

func TestImportDuplicateKeysLastWins(t *testing.T) {
	s := newTestStore(t)
	data := []byte(`{"preferences":[
		{"key":"k","value":{"type":"int","value":1}},
		{"key":"k","value":{"type":"int","value":2}}
	]}`)
	require.NoError(t, Import(context.Background(), s, data, None(), true, true))

	v, ok := s.Current().Get("k")
	require.True(t, ok)
	assert.Equal(t, int32(2), v.I32)
}

func TestImportOverwritesCellOfDifferentType(t *testing.T) {
	s := newTestStore(t)
	put(t, s, "k", cell.String("was a string"))

	data := []byte(`{"preferences":[{"key":"k","value":{"type":"int","value":7}}]}`)
	require.NoError(t, Import(context.Background(), s, data, None(), true, true))

	v, ok := s.Current().Get("k")
	require.True(t, ok)
	assert.Equal(t, cell.TagInt32, v.Tag)
	assert.Equal(t, int32(7), v.I32)
}

func TestClassifierFiltersPrivateAndAppState(t *testing.T) {
	s := newTestStore(t)
	put(t, s, "_pref_secret", cell.String("hidden"))
	put(t, s, "app_state_cache", cell.String("volatile"))
	put(t, s, "normal", cell.String("visible"))

	classifier := Classifier{
		IsPrivate:  func(k string) bool { return k == "_pref_secret" },
		IsAppState: func(k string) bool { return k == "app_state_cache" },
	}

	m := ExportMap(s, classifier, false, false)
	assert.Equal(t, map[string]any{"normal": "visible"}, m)

	mAll := ExportMap(s, classifier, true, true)
	assert.Len(t, mAll, 3)
}

func TestExportImportMapRoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, ImportMap(context.Background(), s, map[string]any{
		"name":    "ada",
		"count":   42,
		"big":     int64(1) << 40,
		"ratio":   3.5,
		"enabled": true,
		"tags":    []string{"x", "y"},
		"nested":  map[string]any{"skip": "me"},
	}, None(), true, true))

	m := ExportMap(s, None(), true, true)
	assert.Equal(t, "ada", m["name"])
	assert.Equal(t, int32(42), m["count"])
	assert.Equal(t, int64(1)<<40, m["big"])
	assert.Equal(t, 3.5, m["ratio"])
	assert.Equal(t, true, m["enabled"])
	assert.ElementsMatch(t, []string{"x", "y"}, m["tags"])
	_, present := m["nested"]
	assert.False(t, present, "nested objects must be skipped on import")
}
