package kv_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/raphaelgruber/soractl/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]kv.Store {
	t.Helper()

	fs, err := kv.NewFileStore(t.TempDir())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rs := kv.NewRedisStore(mr.Addr(), "", "test:")
	t.Cleanup(func() { _ = rs.Close() })

	return map[string]kv.Store{
		"memory": kv.NewMemoryStore(),
		"file":   fs,
		"redis":  rs,
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, found, err := store.Get(ctx, "sora-video-prompts")
			require.NoError(t, err)
			assert.False(t, found, "missing key yields no data")

			require.NoError(t, store.Set(ctx, "sora-video-prompts", `{"a":1}`))
			val, found, err := store.Get(ctx, "sora-video-prompts")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, `{"a":1}`, val)

			require.NoError(t, store.Set(ctx, "sora-video-prompts", `{}`))
			val, _, err = store.Get(ctx, "sora-video-prompts")
			require.NoError(t, err)
			assert.Equal(t, `{}`, val)

			require.NoError(t, store.Remove(ctx, "sora-video-prompts"))
			_, found, err = store.Get(ctx, "sora-video-prompts")
			require.NoError(t, err)
			assert.False(t, found)

			assert.NoError(t, store.Remove(ctx, "never-set"), "removing a missing key is not an error")
		})
	}
}

func TestStoreEmptyValueIsFound(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "k", ""))
			val, found, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Empty(t, val)
		})
	}
}

func TestFileStoreKeysStayInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := kv.NewFileStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "nested/../../escape", "v"))
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].IsDir())

	_, err = os.Stat(filepath.Join(filepath.Dir(root), "escape"))
	assert.True(t, os.IsNotExist(err))

	for _, bad := range []string{"", "  ", ".", "..", ".hidden"} {
		assert.ErrorIs(t, store.Set(ctx, bad, "v"), kv.ErrInvalidKey, "key %q", bad)
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	store, err := kv.NewFileStore(root)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Set(context.Background(), "sora-prompt-history", "[]"))
	}
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sora-prompt-history.json", entries[0].Name())
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := kv.NewFileStore(" ")
	assert.Error(t, err)
}

func TestRedisStoreUsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	store := kv.NewRedisStore(mr.Addr(), "", "soractl:")
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, store.Set(context.Background(), "sora-prompt-history", "[]"))

	got, err := mr.Get("soractl:sora-prompt-history")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestRedisStoreReportsConnectionErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	store := kv.NewRedisStore(mr.Addr(), "", "")
	defer store.Close()
	mr.Close()

	_, _, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := kv.NewMemoryStore().Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
