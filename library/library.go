package library

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Library is the single consistency boundary over the catalog, the
// member registry, the loan ledger, and both identifier counters. All
// mutations go through it; every operation either applies completely or
// leaves the state untouched.
type Library struct {
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time

	catalog  *catalog
	registry *registry
	ledger   *ledger

	nextBookID   int64
	nextMemberID int64
}

type Option func(*Library)

// WithClock overrides the time source. Each operation reads it exactly
// once, so a call straddling midnight still sees one calendar day.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// New returns an empty aggregate with both allocators at 1.
func New(log *zap.Logger, opts ...Option) *Library {
	l := &Library{
		log:          log.Named("library"),
		validate:     validator.New(),
		now:          time.Now,
		catalog:      newCatalog(),
		registry:     newRegistry(),
		ledger:       newLedger(),
		nextBookID:   1,
		nextMemberID: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type addBookInput struct {
	Title       string `validate:"required"`
	Author      string `validate:"required"`
	ISBN        string `validate:"required"`
	CopiesTotal int    `validate:"min=1"`
}

type registerMemberInput struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

// AddBook creates a book with a fresh id and all copies available.
func (l *Library) AddBook(title, author, isbn string, copiesTotal int) (Book, error) {
	in := addBookInput{
		Title:       strings.TrimSpace(title),
		Author:      strings.TrimSpace(author),
		ISBN:        strings.TrimSpace(isbn),
		CopiesTotal: copiesTotal,
	}
	if err := l.validate.Struct(in); err != nil {
		return Book{}, errors.Wrap(ErrInvalidArgument, err.Error())
	}

	b := &Book{
		ID:              l.nextBookID,
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		CopiesTotal:     in.CopiesTotal,
		CopiesAvailable: in.CopiesTotal,
	}
	l.nextBookID++
	l.catalog.add(b)
	l.log.Info("book added", zap.Int64("id", b.ID), zap.String("title", b.Title))
	return *b, nil
}

// GetBook looks up a book by id; absence is a normal result.
func (l *Library) GetBook(id int64) (Book, bool) {
	b, ok := l.catalog.get(id)
	if !ok {
		return Book{}, false
	}
	return *b, true
}

func (l *Library) ListBooks() []Book { return l.catalog.list() }

func (l *Library) SearchBooks(query string) []Book { return l.catalog.search(query) }

// RegisterMember creates a member with a fresh id.
func (l *Library) RegisterMember(name, email string) (Member, error) {
	in := registerMemberInput{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	}
	if err := l.validate.Struct(in); err != nil {
		return Member{}, errors.Wrap(ErrInvalidArgument, err.Error())
	}

	m := &Member{ID: l.nextMemberID, Name: in.Name, Email: in.Email}
	l.nextMemberID++
	l.registry.add(m)
	l.log.Info("member registered", zap.Int64("id", m.ID), zap.String("name", m.Name))
	return *m, nil
}

func (l *Library) GetMember(id int64) (Member, bool) {
	m, ok := l.registry.get(id)
	if !ok {
		return Member{}, false
	}
	return *m, true
}

func (l *Library) ListMembers() []Member { return l.registry.list() }

// BorrowBook creates an active loan and takes one copy off the shelf.
// All checks run before any state changes so a failure leaves nothing
// half-applied.
func (l *Library) BorrowBook(memberID, bookID int64, termDays int) (Loan, error) {
	today := DateOf(l.now())

	if _, ok := l.registry.get(memberID); !ok {
		return Loan{}, errors.Wrapf(ErrNotFound, "member %d", memberID)
	}
	book, ok := l.catalog.get(bookID)
	if !ok {
		return Loan{}, errors.Wrapf(ErrNotFound, "book %d", bookID)
	}
	if book.CopiesAvailable == 0 {
		return Loan{}, errors.Wrap(ErrIllegalState, "no copies available")
	}
	if termDays < 1 {
		return Loan{}, errors.Wrapf(ErrInvalidArgument, "term days %d", termDays)
	}

	key := NewLoanKey(memberID, bookID, today)
	if _, exists := l.ledger.findActive(key); exists {
		return Loan{}, errors.Wrapf(ErrConflict, "duplicate loan key %s", key)
	}

	if err := l.catalog.decrementAvailable(bookID); err != nil {
		return Loan{}, err
	}
	loan := &Loan{
		Key:      key,
		MemberID: memberID,
		BookID:   bookID,
		LoanDate: today,
		DueDate:  today.AddDays(termDays),
	}
	l.ledger.append(loan)
	l.log.Info("loan created",
		zap.String("key", loan.Key),
		zap.String("due", loan.DueDate.String()))
	return *loan, nil
}

// ReturnBook closes the active loan with the given key and puts the copy
// back on the shelf. Returning is one-way; a second return fails.
func (l *Library) ReturnBook(loanKey string) error {
	today := DateOf(l.now())

	loan, ok := l.ledger.find(strings.TrimSpace(loanKey))
	if !ok {
		return errors.Wrapf(ErrNotFound, "loan %s", loanKey)
	}
	if !loan.Active() {
		return errors.Wrap(ErrIllegalState, "already returned")
	}

	if err := l.catalog.incrementAvailable(loan.BookID); err != nil {
		return err
	}
	returned := today
	loan.ReturnDate = &returned
	l.log.Info("loan returned", zap.String("key", loan.Key))
	return nil
}

// ListActiveLoans returns loans without a return date, in ledger order.
func (l *Library) ListActiveLoans() []Loan { return l.ledger.active() }

// ListOverdueLoans returns active loans past due as of today, each with
// the whole-day overdue count.
func (l *Library) ListOverdueLoans() []OverdueLoan {
	return l.ledger.overdue(DateOf(l.now()))
}

// ListLoans returns every loan ever created, in ledger order.
func (l *Library) ListLoans() []Loan { return l.ledger.list() }

// Snapshot copies the full aggregate state for persistence.
func (l *Library) Snapshot() Snapshot {
	return Snapshot{
		Books:        l.catalog.list(),
		Members:      l.registry.list(),
		Loans:        l.ledger.list(),
		NextBookID:   l.nextBookID,
		NextMemberID: l.nextMemberID,
	}
}

// fromSnapshot rebuilds an aggregate, rejecting state that could not
// have been produced by a clean save.
func fromSnapshot(snap Snapshot, log *zap.Logger, opts ...Option) (*Library, error) {
	l := New(log, opts...)

	for _, b := range snap.Books {
		if b.CopiesTotal < 1 || b.CopiesAvailable < 0 || b.CopiesAvailable > b.CopiesTotal {
			return nil, errors.Wrapf(ErrCorruptData, "book %d copies %d/%d", b.ID, b.CopiesAvailable, b.CopiesTotal)
		}
		if b.ID >= snap.NextBookID {
			return nil, errors.Wrapf(ErrCorruptData, "book id %d not below allocator %d", b.ID, snap.NextBookID)
		}
		book := b
		l.catalog.add(&book)
	}
	for _, m := range snap.Members {
		if m.ID >= snap.NextMemberID {
			return nil, errors.Wrapf(ErrCorruptData, "member id %d not below allocator %d", m.ID, snap.NextMemberID)
		}
		member := m
		l.registry.add(&member)
	}
	for _, ln := range snap.Loans {
		if ln.Key == "" || ln.LoanDate.IsZero() || ln.DueDate.IsZero() {
			return nil, errors.Wrapf(ErrCorruptData, "loan %q missing fields", ln.Key)
		}
		loan := ln
		l.ledger.append(&loan)
	}
	if snap.NextBookID < 1 || snap.NextMemberID < 1 {
		return nil, errors.Wrap(ErrCorruptData, "allocator counters below 1")
	}
	l.nextBookID = snap.NextBookID
	l.nextMemberID = snap.NextMemberID
	return l, nil
}
