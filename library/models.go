package library

import "fmt"

// Book holds catalog metadata and copy counts for one title.
// CopiesAvailable stays within [0, CopiesTotal] at all times.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	CopiesTotal     int    `json:"copies_total"`
	CopiesAvailable int    `json:"copies_available"`
}

// Member is a registered borrower.
type Member struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Loan links a member to a borrowed book. Member and book are weak
// references resolved by lookup at read time; loans are kept forever as
// history, even after return.
type Loan struct {
	Key        string `json:"loan_key"`
	MemberID   int64  `json:"member_id"`
	BookID     int64  `json:"book_id"`
	LoanDate   Date   `json:"loan_date"`
	DueDate    Date   `json:"due_date"`
	ReturnDate *Date  `json:"return_date,omitempty"`
}

// Active reports whether the loan has not been returned yet.
func (l *Loan) Active() bool { return l.ReturnDate == nil }

// OverdueLoan is a loan view carrying how many whole days past due it is.
type OverdueLoan struct {
	Loan
	OverdueDays int
}

// NewLoanKey builds the natural key M<memberId>-B<bookId>-<yyyyMMdd>.
// It is unique as long as a member does not borrow the same book twice
// on one day while the first loan is still open; borrow rejects that
// case as a conflict.
func NewLoanKey(memberID, bookID int64, loanDate Date) string {
	return fmt.Sprintf("M%d-B%d-%s", memberID, bookID, loanDate.Compact())
}

// Snapshot is the complete persisted state: every record in insertion
// order plus both allocator counters.
type Snapshot struct {
	Books        []Book   `json:"books"`
	Members      []Member `json:"members"`
	Loans        []Loan   `json:"loans"`
	NextBookID   int64    `json:"next_book_id"`
	NextMemberID int64    `json:"next_member_id"`
}
