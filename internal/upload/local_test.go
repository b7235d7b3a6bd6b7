package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalUploaderStoresFile(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir)

	res, err := u.Upload(context.Background(), strings.NewReader("photo-bytes"), "image/png", 1024, "a@x.com/photo")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a@x.com/photo", res.URL)
	assert.Equal(t, "a@x.com/photo", res.Path)

	data, err := os.ReadFile(filepath.Join(dir, "a@x.com", "photo"))
	require.NoError(t, err)
	assert.Equal(t, "photo-bytes", string(data))
}

func TestLocalUploaderOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir)

	_, err := u.Upload(context.Background(), strings.NewReader("first"), "image/png", 1024, "a@x.com/photo")
	require.NoError(t, err)
	_, err = u.Upload(context.Background(), strings.NewReader("second"), "image/png", 1024, "a@x.com/photo")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "a@x.com", "photo"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalUploaderRejectsOversizedFile(t *testing.T) {
	u := NewLocalUploader(t.TempDir())

	_, err := u.Upload(context.Background(), strings.NewReader("0123456789"), "image/png", 5, "a@x.com/photo")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestLocalUploaderRejectsEmptyFile(t *testing.T) {
	u := NewLocalUploader(t.TempDir())

	_, err := u.Upload(context.Background(), strings.NewReader(""), "image/png", 1024, "a@x.com/photo")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLocalUploaderStripsTraversal(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir)

	res, err := u.Upload(context.Background(), strings.NewReader("x"), "image/png", 1024, "../../etc/passwd")
	require.NoError(t, err)
	assert.NotContains(t, res.Path, "..")

	entries, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "etc", e.Name())
	}
}
