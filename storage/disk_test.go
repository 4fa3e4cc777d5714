package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	disk := NewDisk(t.TempDir(), "/storage/")

	key := NewKey("cover.PNG")
	assert.True(t, strings.HasPrefix(key, "posts/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	ok, err := disk.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, disk.Store(ctx, key, "image/png", strings.NewReader("payload")))

	ok, err = disk.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := os.ReadFile(filepath.Join(disk.Root(), filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, disk.Delete(ctx, key))
	ok, err = disk.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDiskDeleteMissingKeyIsNotAnError(t *testing.T) {
	disk := NewDisk(t.TempDir(), "/storage")
	assert.NoError(t, disk.Delete(context.Background(), "posts/gone.png"))
}

func TestDiskPublicURL(t *testing.T) {
	disk := NewDisk("public/storage", "/storage/")
	assert.Equal(t, "/storage/posts/a.png", disk.PublicURL("posts/a.png"))
}

func TestDiskKeyTraversalStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	disk := NewDisk(filepath.Join(root, "public"), "/storage")

	outside := filepath.Join(root, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))

	require.NoError(t, disk.Store(context.Background(), "../secret.txt", "text/plain", strings.NewReader("clobber")))

	data, err := os.ReadFile(outside)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data), "file outside the root must not be touched")

	ok, err := disk.Exists(context.Background(), "../secret.txt")
	require.NoError(t, err)
	assert.True(t, ok, "the cleaned key lands inside the root")
}

func TestNewKeyUniqueness(t *testing.T) {
	a := NewKey("photo.jpg")
	b := NewKey("photo.jpg")
	assert.NotEqual(t, a, b)
}
