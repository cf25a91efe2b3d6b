package assets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreSave(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), KindMenu, "tajine.jpg", strings.NewReader("fake-image-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/images/menu/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)

	name := filepath.Base(url)
	data, err := os.ReadFile(filepath.Join(store.Dir(), KindMenu, name))
	require.NoError(t, err)
	assert.Equal(t, "fake-image-bytes", string(data))
}

func TestDiskStoreUniqueNames(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	first, err := store.Save(context.Background(), KindPatisserie, "eclair.png", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := store.Save(context.Background(), KindPatisserie, "eclair.png", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestDiskStoreRejectsNonImage(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), KindMenu, "script.sh", strings.NewReader("#!"))
	assert.Error(t, err)

	_, err = store.Save(context.Background(), "avatars", "avatar.png", strings.NewReader("x"))
	assert.Error(t, err)
}
