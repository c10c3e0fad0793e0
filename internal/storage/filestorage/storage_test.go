package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hondenweiden/internal/storage"
)

func newTestStorage(t *testing.T) *LocalImageStorage {
	t.Helper()

	s, err := NewLocalImageStorage(t.TempDir(), "/pictures")
	require.NoError(t, err)

	return s
}

func TestReplace_KeepsSingleFile(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, size, err := s.Replace(ctx, "folder1", "first.jpg", strings.NewReader("first image"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("first image")), size)

	relPath, _, err := s.Replace(ctx, "folder1", "second.png", strings.NewReader("second image"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("folder1", "second.png"), relPath)

	entries, err := os.ReadDir(filepath.Join(s.GetBaseDir(), "folder1"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second.png", entries[0].Name())

	content, err := os.ReadFile(s.GetFullPath(relPath))
	require.NoError(t, err)
	assert.Equal(t, "second image", string(content))
}

func TestReplace_RejectsBadNames(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		folder   string
		filename string
		wantErr  error
	}{
		{"empty folder", "", "a.jpg", apperrors.ErrInvalidFolderName},
		{"folder with traversal", "../escape", "a.jpg", apperrors.ErrInvalidFolderName},
		{"folder with slash", "a/b", "a.jpg", apperrors.ErrInvalidFolderName},
		{"empty filename", "folder1", "", apperrors.ErrInvalidFilename},
		{"filename with traversal", "folder1", "..", apperrors.ErrInvalidFilename},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.Replace(ctx, tt.folder, tt.filename, strings.NewReader("x"))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRemoveFolder(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	t.Run("removes folder with contents", func(t *testing.T) {
		_, _, err := s.Replace(ctx, "gone", "img.jpg", strings.NewReader("x"))
		require.NoError(t, err)
		require.True(t, s.FolderExists("gone"))

		require.NoError(t, s.RemoveFolder(ctx, "gone"))
		assert.False(t, s.FolderExists("gone"))
	})

	t.Run("missing folder is not an error", func(t *testing.T) {
		assert.NoError(t, s.RemoveFolder(ctx, "never-existed"))
	})

	t.Run("invalid name is rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.RemoveFolder(ctx, "../escape"), apperrors.ErrInvalidFolderName)
	})
}

func TestListImages(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, _, err := s.Replace(ctx, "aaa", "photo.JPG", strings.NewReader("x"))
	require.NoError(t, err)
	_, _, err = s.Replace(ctx, "bbb", "drawing.svg", strings.NewReader("x"))
	require.NoError(t, err)

	// non-image files are skipped
	require.NoError(t, os.WriteFile(filepath.Join(s.GetBaseDir(), "notes.txt"), []byte("x"), 0644))

	// nested folders are walked too
	nested := filepath.Join(s.GetBaseDir(), "ccc", "deep")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "pic.webp"), []byte("x"), 0644))

	images, err := s.ListImages(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/pictures/aaa/photo.JPG",
		"/pictures/bbb/drawing.svg",
		"/pictures/ccc/deep/pic.webp",
	}, images)
}

func TestListImages_EmptyDir(t *testing.T) {
	s := newTestStorage(t)

	images, err := s.ListImages(context.Background())
	require.NoError(t, err)
	require.NotNil(t, images)
	assert.Empty(t, images)
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("550e8400-e29b-41d4-a716-446655440000"))
	assert.True(t, ValidName("photo.jpg"))

	assert.False(t, ValidName(""))
	assert.False(t, ValidName("."))
	assert.False(t, ValidName(".."))
	assert.False(t, ValidName("a/b"))
	assert.False(t, ValidName(`a\b`))
	assert.False(t, ValidName("../x"))
}
