package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

func TestLocalStorageSaveImage(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	require.NoError(t, err)
	assert.Equal(t, root, s.Root())

	t.Run("gif is stored under posts", func(t *testing.T) {
		name, err := s.SaveImage(bytes.NewReader(smallGIF), "small.GIF")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(name, "posts/"))
		assert.True(t, strings.HasSuffix(name, ".gif"))

		saved, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		require.NoError(t, err)
		assert.Equal(t, smallGIF, saved)
	})

	t.Run("extension comes from content when missing", func(t *testing.T) {
		name, err := s.SaveImage(bytes.NewReader(smallGIF), "noext")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(name, ".gif"))
	})

	t.Run("unique names", func(t *testing.T) {
		a, err := s.SaveImage(bytes.NewReader(smallGIF), "same.gif")
		require.NoError(t, err)
		b, err := s.SaveImage(bytes.NewReader(smallGIF), "same.gif")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("text is rejected", func(t *testing.T) {
		_, err := s.SaveImage(strings.NewReader("just some text"), "fake.gif")
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("oversized upload is rejected", func(t *testing.T) {
		big := io.MultiReader(bytes.NewReader(smallGIF), bytes.NewReader(make([]byte, MaxImageSize)))
		_, err := s.SaveImage(big, "big.gif")
		assert.ErrorIs(t, err, ErrTooLarge)
	})
}

func TestLocalStorageDelete(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	require.NoError(t, err)

	name, err := s.SaveImage(bytes.NewReader(smallGIF), "small.gif")
	require.NoError(t, err)

	require.NoError(t, s.Delete(name))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(name)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(name), "deleting twice is fine")
	assert.NoError(t, s.Delete(""))
	assert.Error(t, s.Delete("../posts"))
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage(smallGIF))
	assert.False(t, IsImage([]byte("<html></html>")))
	assert.False(t, IsImage(nil))
}
