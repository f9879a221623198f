package docfield

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/cuemby/prefstore/pkg/store/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	DisplayName string
	Credits     int
}

type accountCodec struct{}

func (accountCodec) Marshal(a account) ([]byte, error) { return json.Marshal(a) }
func (accountCodec) Unmarshal(b []byte) (account, error) {
	var a account
	err := json.Unmarshal(b, &a)
	return a, err
}

func newTestDocStore(t *testing.T) *docstore.Store[account] {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "account.json")
	s, err := docstore.Open[account]("account", func() (string, error) { return path, nil }, accountCodec{}, account{DisplayName: "anon"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func displayNameField(s *docstore.Store[account]) *Field[account, string] {
	return NewField(s, "anon",
		func(a account) string { return a.DisplayName },
		func(a account, v string) account { a.DisplayName = v; return a },
	)
}

func TestFieldGetReflectsDocument(t *testing.T) {
	s := newTestDocStore(t)
	f := displayNameField(s)
	assert.Equal(t, "anon", f.GetBlocking())
}

func TestFieldSetUpdatesOnlyItsOwnField(t *testing.T) {
	s := newTestDocStore(t)
	name := displayNameField(s)
	credits := NewField(s, 0,
		func(a account) int { return a.Credits },
		func(a account, v int) account { a.Credits = v; return a },
	)

	require.NoError(t, credits.SetBlocking(100))
	require.NoError(t, name.SetBlocking("ada"))

	assert.Equal(t, "ada", name.GetBlocking())
	assert.Equal(t, 100, credits.GetBlocking())
}

func TestFieldResetToDefaultWritesDefaultBack(t *testing.T) {
	s := newTestDocStore(t)
	f := displayNameField(s)

	require.NoError(t, f.SetBlocking("changed"))
	require.NoError(t, f.ResetToDefault(context.Background()))
	assert.Equal(t, "anon", f.GetBlocking())
}

func TestFieldDeleteEqualsResetToDefault(t *testing.T) {
	s := newTestDocStore(t)
	f := displayNameField(s)

	require.NoError(t, f.SetBlocking("changed"))
	require.NoError(t, f.Delete(context.Background()))
	assert.Equal(t, "anon", f.GetBlocking())
}

func TestFieldNotBatchExcluded(t *testing.T) {
	s := newTestDocStore(t)
	f := displayNameField(s)
	assert.True(t, f.SupportsBatch())
}

func TestFieldAsFlowDeliversUpdates(t *testing.T) {
	s := newTestDocStore(t)
	f := displayNameField(s)

	ch, cancel := f.AsFlow(context.Background())
	defer cancel()
	assert.Equal(t, "anon", <-ch)

	require.NoError(t, f.SetBlocking("ada"))
	assert.Equal(t, "ada", <-ch)
}

func TestFieldStateFlowTracksLatest(t *testing.T) {
	s := newTestDocStore(t)
	f := displayNameField(s)

	state := f.StateFlow(context.Background())
	defer state.Stop()

	require.NoError(t, f.SetBlocking("ada"))
	require.Eventually(t, func() bool {
		return state.Value() == "ada"
	}, time.Second, time.Millisecond)
}

func TestWholeDocumentSupportsBatchIsFalse(t *testing.T) {
	s := newTestDocStore(t)
	w := NewWholeDocument(s, account{DisplayName: "anon"})
	assert.False(t, w.SupportsBatch())
}

func TestWholeDocumentSetReplacesEverything(t *testing.T) {
	s := newTestDocStore(t)
	w := NewWholeDocument(s, account{DisplayName: "anon"})

	require.NoError(t, w.SetBlocking(account{DisplayName: "ada", Credits: 5}))
	assert.Equal(t, account{DisplayName: "ada", Credits: 5}, w.GetBlocking())
}

func TestWholeDocumentResetToDefault(t *testing.T) {
	s := newTestDocStore(t)
	def := account{DisplayName: "anon"}
	w := NewWholeDocument(s, def)

	require.NoError(t, w.SetBlocking(account{DisplayName: "ada", Credits: 5}))
	require.NoError(t, w.ResetToDefault(context.Background()))
	assert.Equal(t, def, w.GetBlocking())
}
