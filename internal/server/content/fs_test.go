package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_CreatesNamespaceOnWrite(t *testing.T) {
	root := filepath.Join(t.TempDir(), "files_manager")
	s := NewFSStore(root)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "key-1", []byte("hello")))

	got, err := s.Read(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "key-1", entries[0].Name())
}

func TestFSStore_Overwrite(t *testing.T) {
	s := NewFSStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, DerivativeKey("key", "100"), []byte("v1")))
	require.NoError(t, s.Write(ctx, DerivativeKey("key", "100"), []byte("v2")))

	got, err := s.Read(ctx, "key_100")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestFSStore_ReadMissing(t *testing.T) {
	s := NewFSStore(t.TempDir())

	_, err := s.Read(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestFSStore_RejectsTraversal(t *testing.T) {
	s := NewFSStore(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "..", "../etc", "a/b", `a\b`} {
		err := s.Write(ctx, key, []byte("x"))
		assert.ErrorIs(t, err, common.ErrInvalidKey, key)

		_, err = s.Read(ctx, key)
		assert.ErrorIs(t, err, common.ErrInvalidKey, key)
	}
}

func TestFSStore_Ping(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "dir")
	require.NoError(t, NewFSStore(root).Ping(context.Background()))

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	assert.Error(t, NewFSStore(file).Ping(context.Background()))
}

func TestFSStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFSStore(t.TempDir()).Write(ctx, "k", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
