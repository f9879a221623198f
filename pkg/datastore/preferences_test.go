package datastore

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/cuemby/prefstore/pkg/backup"
	"github.com/cuemby/prefstore/pkg/batch"
	"github.com/cuemby/prefstore/pkg/cell"
	"github.com/cuemby/prefstore/pkg/store/flatstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPreferences(t *testing.T, opts ...Option) *Preferences {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prefs.db")
	ds, err := PreferencesDatastore("prefs", func() (string, error) { return path, nil }, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	return ds
}

func TestPreferencesBlankKeyPanicsAtConstruction(t *testing.T) {
	ds := newTestPreferences(t)
	assert.Panics(t, func() { ds.Bool("", false) })
	assert.Panics(t, func() { ds.String("", "") })
}

func TestPreferencesPrimitiveHandlesRoundTrip(t *testing.T) {
	ds := newTestPreferences(t)

	b := ds.Bool("enabled", false)
	require.NoError(t, b.SetBlocking(true))
	assert.True(t, b.GetBlocking())

	i := ds.Int32("count", 0)
	require.NoError(t, i.SetBlocking(7))
	assert.Equal(t, int32(7), i.GetBlocking())

	s := ds.String("name", "anon")
	assert.Equal(t, "anon", s.GetBlocking())
}

func TestPreferencesEnumHandle(t *testing.T) {
	ds := newTestPreferences(t)
	type theme string
	const (
		themeLight theme = "light"
		themeDark  theme = "dark"
	)
	h := Enum(ds, "theme", themeLight, themeLight, themeDark)
	require.NoError(t, h.SetBlocking(themeDark))
	assert.Equal(t, themeDark, h.GetBlocking())
}

func TestPreferencesStructuralHandle(t *testing.T) {
	ds := newTestPreferences(t)
	type profile struct {
		Name string
		Age  int
	}
	h := Structural(ds, "profile", profile{})
	require.NoError(t, h.SetBlocking(profile{Name: "ada", Age: 30}))
	assert.Equal(t, profile{Name: "ada", Age: 30}, h.GetBlocking())
}

func TestPreferencesListHandle(t *testing.T) {
	ds := newTestPreferences(t)
	encode := func(n int) string { return strconv.Itoa(n) }
	decode := func(s string) (int, error) { return strconv.Atoi(s) }
	h := List(ds, "scores", nil, encode, decode)
	require.NoError(t, h.SetBlocking([]int{1, 2, 3}))
	assert.Equal(t, []int{1, 2, 3}, h.GetBlocking())
}

func TestPreferencesNullableAndMapped(t *testing.T) {
	ds := newTestPreferences(t)
	base := ds.Int32("age", 0)

	nullable := Nullable(base)
	assert.Nil(t, nullable.GetBlocking())
	require.NoError(t, nullable.SetBlocking(intPtr(42)))
	require.NotNil(t, nullable.GetBlocking())
	assert.Equal(t, int32(42), *nullable.GetBlocking())

	mapped := Mapped(base, func(v int32) string { return fmt.Sprintf("age:%d", v) }, func(s string) int32 { return 0 })
	assert.Equal(t, "age:42", mapped.GetBlocking())
}

func intPtr(v int32) *int32 { return &v }

func TestPreferencesBatchWriteCollapsesIntoOneCommit(t *testing.T) {
	ds := newTestPreferences(t)
	a := ds.Int32("a", 0)
	b := ds.Int32("b", 0)

	require.NoError(t, ds.Write(context.Background(), func(w *batch.WriteScope) {
		batch.Set(w, a, 1)
		batch.Set(w, b, 2)
	}))

	assert.Equal(t, int32(1), a.GetBlocking())
	assert.Equal(t, int32(2), b.GetBlocking())
}

func TestPreferencesReadProjectsConsistentSnapshot(t *testing.T) {
	ds := newTestPreferences(t)
	a := ds.Int32("a", 1)
	b := ds.Int32("b", 2)

	var sum int32
	ds.Read(func(r *batch.ReadScope) {
		sum = batch.Get(r, a) + batch.Get(r, b)
	})
	assert.Equal(t, int32(3), sum)
}

func TestPreferencesReadFlowRecomputesOnChange(t *testing.T) {
	ds := newTestPreferences(t)
	a := ds.Int32("a", 1)

	ch, cancel := ReadFlow(context.Background(), ds, func(r *batch.ReadScope) int32 {
		return batch.Get(r, a) * 10
	})
	defer cancel()

	assert.Equal(t, int32(10), <-ch)
	require.NoError(t, a.SetBlocking(5))
	assert.Equal(t, int32(50), <-ch)
}

func TestPreferencesExportImportRoundTrip(t *testing.T) {
	ds := newTestPreferences(t)
	h := ds.String("greeting", "")
	require.NoError(t, h.SetBlocking("hi"))

	data, err := ds.Export(true, true)
	require.NoError(t, err)

	ds2 := newTestPreferences(t)
	require.NoError(t, ds2.Import(context.Background(), data, true, true))
	assert.Equal(t, "hi", ds2.String("greeting", "").GetBlocking())
}

func TestPreferencesExportMapImportMapRoundTrip(t *testing.T) {
	ds := newTestPreferences(t)
	require.NoError(t, ds.ImportMap(context.Background(), map[string]any{"count": 5}, true, true))
	m := ds.ExportMap(true, true)
	assert.Equal(t, int32(5), m["count"])
}

func TestPreferencesClassifierAppliesToExport(t *testing.T) {
	classifier := backup.Classifier{IsPrivate: func(k string) bool { return k == "secret" }}
	ds := newTestPreferences(t, WithClassifier(classifier))

	require.NoError(t, ds.String("secret", "").SetBlocking("hidden"))
	require.NoError(t, ds.String("visible", "").SetBlocking("shown"))

	m := ds.ExportMap(false, true)
	_, hasSecret := m["secret"]
	assert.False(t, hasSecret)
	assert.Equal(t, "shown", m["visible"])
}

func TestPreferencesMigrationRunsBeforeFirstObserve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prefs.db")
	migration := func(s *flatstore.Snapshot) *flatstore.Snapshot {
		tx := flatstore.NewTxn(s)
		tx.Put("migrated", cell.Bool(true))
		return tx.Snapshot()
	}

	ds, err := PreferencesDatastore("prefs", func() (string, error) { return path, nil }, WithMigration(migration))
	require.NoError(t, err)
	defer ds.Close()

	assert.True(t, ds.Bool("migrated", false).GetBlocking())
}
