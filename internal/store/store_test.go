package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAll(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	stores := map[string]Store{}
	for name, dsn := range map[string]string{
		"memory": "memory://",
		"file":   "file://" + filepath.Join(dir, "options.json"),
		"sqlite": "sqlite://" + filepath.Join(dir, "options.db"),
		"bolt":   "bolt://" + filepath.Join(dir, "options.bolt"),
	} {
		s, err := Open(dsn)
		require.NoError(t, err, name)
		t.Cleanup(func() { _ = s.Close() })
		stores[name] = s
	}
	return stores
}

func TestStoreConformance(t *testing.T) {
	ctx := context.Background()

	for name, s := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "bm_disabled_blocks", []byte(`["core/list"]`)))
			got, err := s.Get(ctx, "bm_disabled_blocks")
			require.NoError(t, err)
			assert.JSONEq(t, `["core/list"]`, string(got))

			require.NoError(t, s.Set(ctx, "bm_disabled_blocks", []byte(`[]`)))
			got, err = s.Get(ctx, "bm_disabled_blocks")
			require.NoError(t, err)
			assert.JSONEq(t, `[]`, string(got))

			require.NoError(t, s.Set(ctx, "other", []byte(`{"a":1}`)))
			require.NoError(t, s.Delete(ctx, "bm_disabled_blocks"))
			_, err = s.Get(ctx, "bm_disabled_blocks")
			assert.ErrorIs(t, err, ErrNotFound)

			// other keys are untouched by a delete
			got, err = s.Get(ctx, "other")
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":1}`, string(got))

			// deleting a missing key is not an error
			assert.NoError(t, s.Delete(ctx, "never-set"))
		})
	}
}

func TestFileStorePreservesUnknownKeys(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "options.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(`{"siteurl":"https://example.test","blogname":"Example"}`), 0o600))

	f, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "bm_disabled_blocks", []byte(`["core/html"]`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 3)
	assert.JSONEq(t, `"https://example.test"`, string(raw["siteurl"]))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreRejectsInvalidJSON(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "options.json"))
	require.NoError(t, err)
	assert.Error(t, f.Set(context.Background(), "k", []byte("{not json")))
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.json")
	require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0o600))

	f, err := OpenFile(path)
	require.NoError(t, err)
	_, err = f.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileStoreNullDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o600))

	f, err := OpenFile(path)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, f.Delete(ctx, "k"))
	require.NoError(t, f.Set(ctx, "k", []byte("[]")))

	got, err := f.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(got))
}

func TestOpen(t *testing.T) {
	_, err := Open("redis://localhost")
	assert.Error(t, err)

	s, err := Open(filepath.Join(t.TempDir(), "bare.db"))
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &SQLite{}, s)

	mem, err := Open("sqlite://:memory:")
	require.NoError(t, err)
	defer mem.Close()
	require.NoError(t, mem.Set(context.Background(), "k", []byte(`1`)))
	v, err := mem.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))
}
