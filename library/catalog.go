package library

import (
	"strings"

	"github.com/pkg/errors"
)

// catalog owns the book records. Insertion order is preserved for
// listing; the index map serves lookups by id.
type catalog struct {
	books []*Book
	byID  map[int64]*Book
}

func newCatalog() *catalog {
	return &catalog{byID: make(map[int64]*Book)}
}

func (c *catalog) add(b *Book) {
	c.books = append(c.books, b)
	c.byID[b.ID] = b
}

func (c *catalog) get(id int64) (*Book, bool) {
	b, ok := c.byID[id]
	return b, ok
}

func (c *catalog) list() []Book {
	out := make([]Book, 0, len(c.books))
	for _, b := range c.books {
		out = append(out, *b)
	}
	return out
}

// search matches the query as a case-insensitive substring of title,
// author, or ISBN. An empty query matches everything.
func (c *catalog) search(query string) []Book {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Book, 0)
	for _, b := range c.books {
		if q == "" ||
			strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.ISBN), q) {
			out = append(out, *b)
		}
	}
	return out
}

func (c *catalog) decrementAvailable(id int64) error {
	b, ok := c.byID[id]
	if !ok {
		return errors.Wrapf(ErrNotFound, "book %d", id)
	}
	if b.CopiesAvailable == 0 {
		return errors.Wrap(ErrIllegalState, "no copies available")
	}
	b.CopiesAvailable--
	return nil
}

func (c *catalog) incrementAvailable(id int64) error {
	b, ok := c.byID[id]
	if !ok {
		return errors.Wrapf(ErrNotFound, "book %d", id)
	}
	if b.CopiesAvailable == b.CopiesTotal {
		return errors.Wrapf(ErrIllegalState, "all %d copies already in", b.CopiesTotal)
	}
	b.CopiesAvailable++
	return nil
}
