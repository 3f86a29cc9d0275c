package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveIfLarger(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file is fine", func(t *testing.T) {
		assert.NoError(t, RemoveIfLarger(filepath.Join(dir, "absent.log"), 10))
	})

	t.Run("keeps files within the limit", func(t *testing.T) {
		path := filepath.Join(dir, "small.log")
		require.NoError(t, os.WriteFile(path, []byte("12345"), 0644))

		require.NoError(t, RemoveIfLarger(path, 5))
		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("removes files over the limit", func(t *testing.T) {
		path := filepath.Join(dir, "big.log")
		require.NoError(t, os.WriteFile(path, []byte("123456"), 0644))

		require.NoError(t, RemoveIfLarger(path, 5))
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("non-positive limit disables the cap", func(t *testing.T) {
		path := filepath.Join(dir, "uncapped.log")
		require.NoError(t, os.WriteFile(path, []byte("123456"), 0644))

		require.NoError(t, RemoveIfLarger(path, 0))
		_, err := os.Stat(path)
		assert.NoError(t, err)
	})
}
