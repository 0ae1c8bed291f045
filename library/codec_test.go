package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func populatedLibrary(t *testing.T) *Library {
	t.Helper()
	lib, clk := testLibrary(t, "2024-01-01")

	addTestBook(t, lib, "The Hobbit", "J.R.R. Tolkien", 2)
	addTestBook(t, lib, "Dune", "Frank Herbert", 1)
	alice := addTestMember(t, lib, "alice")
	bob := addTestMember(t, lib, "bob")

	first, err := lib.BorrowBook(alice.ID, 1, 14)
	require.NoError(t, err)
	_, err = lib.BorrowBook(bob.ID, 2, 7)
	require.NoError(t, err)

	clk.set(t, "2024-01-03")
	require.NoError(t, lib.ReturnBook(first.Key))
	return lib
}

func TestSaveLoadRoundTrip(t *testing.T) {
	lib := populatedLibrary(t)
	path := filepath.Join(t.TempDir(), "library.json")

	require.NoError(t, lib.Save(path))

	loaded, err := Load(path, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, lib.Snapshot(), loaded.Snapshot())

	// Allocators carry over: no id reuse across sessions.
	book, err := loaded.AddBook("New Title", "New Author", "isbn-3", 1)
	require.NoError(t, err)
	require.Equal(t, int64(3), book.ID)
	member, err := loaded.RegisterMember("carol", "carol@example.com")
	require.NoError(t, err)
	require.Equal(t, int64(3), member.ID)
}

func TestSaveOverwritesPriorFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o644))

	lib, _ := testLibrary(t, "2024-01-01")
	addTestBook(t, lib, "Dune", "Frank Herbert", 1)
	require.NoError(t, lib.Save(path))

	loaded, err := Load(path, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, loaded.ListBooks(), 1)
}

func TestLoadMissingFile(t *testing.T) {
	lib, err := Load(filepath.Join(t.TempDir(), "nope.json"), zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, lib)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path, zap.NewNop())
	require.ErrorIs(t, err, ErrCorruptData)
}

func TestLoadRejectsInconsistentState(t *testing.T) {
	cases := map[string]string{
		"available above total": `{
			"books":[{"id":1,"title":"T","author":"A","isbn":"I","copies_total":1,"copies_available":2}],
			"members":[],"loans":[],"next_book_id":2,"next_member_id":1}`,
		"id at allocator": `{
			"books":[{"id":3,"title":"T","author":"A","isbn":"I","copies_total":1,"copies_available":1}],
			"members":[],"loans":[],"next_book_id":3,"next_member_id":1}`,
		"zero counters": `{"books":[],"members":[],"loans":[],"next_book_id":0,"next_member_id":0}`,
		"loan without key": `{
			"books":[],"members":[],
			"loans":[{"loan_key":"","member_id":1,"book_id":1,"loan_date":"2024-01-01","due_date":"2024-01-15"}],
			"next_book_id":1,"next_member_id":1}`,
		"bad date": `{
			"books":[],"members":[],
			"loans":[{"loan_key":"M1-B1-20240101","member_id":1,"book_id":1,"loan_date":"01/01/2024","due_date":"2024-01-15"}],
			"next_book_id":1,"next_member_id":1}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "library.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			_, err := Load(path, zap.NewNop())
			require.ErrorIs(t, err, ErrCorruptData)
		})
	}
}
