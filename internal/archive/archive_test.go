package archive

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/equiplend/invoice-pipeline/internal/entity"
)

func testStore(t *testing.T) *DirStore {
	t.Helper()
	s, err := NewDirStore(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func TestArchiveWritesBytes(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	doc := entity.RawDocument{Data: []byte("scan bytes"), MediaType: "image/png", Filename: "scan.PNG"}

	path, err := s.Archive(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, ".png", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, doc.Data, data)
}

func TestArchiveExtensionFromMediaType(t *testing.T) {
	t.Parallel()

	s := testStore(t)

	path, err := s.Archive(context.Background(), entity.RawDocument{
		Data: []byte("%PDF-"), MediaType: "application/pdf",
	})
	require.NoError(t, err)
	require.Equal(t, ".pdf", filepath.Ext(path))

	path, err = s.Archive(context.Background(), entity.RawDocument{
		Data: []byte("??"), MediaType: "application/octet-stream",
	})
	require.NoError(t, err)
	require.Equal(t, ".bin", filepath.Ext(path))
}

func TestArchiveUniquePaths(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	doc := entity.RawDocument{Data: []byte("same"), MediaType: "image/png"}

	first, err := s.Archive(context.Background(), doc)
	require.NoError(t, err)
	second, err := s.Archive(context.Background(), doc)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestNewDirStoreCreatesDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "archive")
	_, err := NewDirStore(dir, nil)
	require.NoError(t, err)
	require.DirExists(t, dir)
}
