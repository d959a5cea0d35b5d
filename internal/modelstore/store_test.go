package modelstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shabbyrobe/subcrack"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func trainModel(t *testing.T, line string) *subcrack.Model {
	t.Helper()
	m, err := subcrack.TrainLines([]string{line, line, line})
	require.NoError(t, err)
	return m
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	store := setupTestStore(t)
	m := trainModel(t, "the cat sat on the mat")

	require.NoError(t, store.Save("cats", m))

	got, err := store.Load("cats")
	require.NoError(t, err)
	assert.InDelta(t, m.Prob('t', 'h'), got.Prob('t', 'h'), 1e-12)
	assert.InDelta(t, m.LogLikelihood("the mat"), got.LogLikelihood("the mat"), 1e-9)

	// A loaded model is usable for search straight away.
	_, err = subcrack.NewBreaker(got)
	assert.NoError(t, err)
}

func TestSaveReplaces(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Save("m", trainModel(t, "aaaa")))
	replacement := trainModel(t, "zzzz")
	require.NoError(t, store.Save("m", replacement))

	got, err := store.Load("m")
	require.NoError(t, err)
	assert.InDelta(t, replacement.Prob('z', 'z'), got.Prob('z', 'z'), 1e-12)

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"m"}, names)
}

func TestSaveUntrained(t *testing.T) {
	store := setupTestStore(t)
	err := store.Save("empty", &subcrack.Model{})
	assert.True(t, errors.Is(err, subcrack.ErrUntrained))
}

func TestLoadNotFound(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.Load("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInvalidNames(t *testing.T) {
	store := setupTestStore(t)
	m := trainModel(t, "abc")
	for _, name := range []string{"", "a/b", "nul\x00"} {
		assert.Error(t, store.Save(name, m), "%q", name)
		_, err := store.Load(name)
		assert.Error(t, err, "%q", name)
		assert.Error(t, store.Delete(name), "%q", name)
	}
}

func TestListAndDelete(t *testing.T) {
	store := setupTestStore(t)

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, n := range []string{"zulu", "alpha", "mike"} {
		require.NoError(t, store.Save(n, trainModel(t, n)))
	}
	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mike", "zulu"}, names)

	require.NoError(t, store.Delete("mike"))
	assert.True(t, errors.Is(store.Delete("mike"), ErrNotFound))

	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zulu"}, names)

	_, err = store.Load("mike")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPersistentReopen(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.Logger = zaptest.NewLogger(t)

	store, err := Open(cfg)
	require.NoError(t, err)
	m := trainModel(t, "persist me")
	require.NoError(t, store.Save("kept", m))
	require.NoError(t, store.Close())

	store, err = Open(cfg)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Load("kept")
	require.NoError(t, err)
	assert.InDelta(t, m.Prob('p', 'e'), got.Prob('p', 'e'), 1e-12)
}
