package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSQLiteRoundTrip(t *testing.T) {
	lib := populatedLibrary(t)
	path := filepath.Join(t.TempDir(), "library.db")

	require.NoError(t, lib.ExportSQLite(path))

	imported, err := ImportSQLite(path, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, lib.Snapshot(), imported.Snapshot())
}

func TestExportOverwritesPriorFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")

	lib, _ := testLibrary(t, "2024-01-01")
	addTestBook(t, lib, "The Hobbit", "J.R.R. Tolkien", 2)
	addTestBook(t, lib, "Dune", "Frank Herbert", 1)
	require.NoError(t, lib.ExportSQLite(path))

	// A second export must fully replace the first.
	smaller, _ := testLibrary(t, "2024-01-02")
	addTestBook(t, smaller, "Emma", "Jane Austen", 1)
	require.NoError(t, smaller.ExportSQLite(path))

	imported, err := ImportSQLite(path, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, imported.ListBooks(), 1)
	require.Equal(t, "Emma", imported.ListBooks()[0].Title)
}

func TestImportMissingFile(t *testing.T) {
	_, err := ImportSQLite(filepath.Join(t.TempDir(), "nope.db"), zap.NewNop())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestImportMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	require.NoError(t, os.WriteFile(path, []byte("not a database"), 0o644))

	_, err := ImportSQLite(path, zap.NewNop())
	require.ErrorIs(t, err, ErrCorruptData)
}
