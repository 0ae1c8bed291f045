package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"library-circulation/library"
)

// runMenu drives the interactive command loop. All parsing and retry
// prompting happens here; the core only ever sees typed, range-checked
// arguments.
func runMenu(in io.Reader, out io.Writer, lib *library.Library, cfg Config) error {
	sc := bufio.NewScanner(in)

	fmt.Fprintln(out, "Welcome to the library circulation tool.")
	fmt.Fprintln(out, "Available commands:")
	fmt.Fprintln(out, "  Catalog: add book, list books, search")
	fmt.Fprintln(out, "  Members: add member, list members")
	fmt.Fprintln(out, "  Circulation: borrow, return, loans, overdue")
	fmt.Fprintln(out, "  System: exit (saves and quits)")

	for {
		fmt.Fprint(out, "\n> ")
		if !sc.Scan() {
			fmt.Fprintln(out, "\nInput closed. Changes since the last save are lost.")
			return nil
		}

		switch strings.TrimSpace(sc.Text()) {
		case "add book":
			handleAddBook(sc, out, lib)
		case "list books":
			handleListBooks(out, lib)
		case "search":
			handleSearchBooks(sc, out, lib)
		case "add member":
			handleAddMember(sc, out, lib)
		case "list members":
			handleListMembers(out, lib)
		case "borrow":
			handleBorrow(sc, out, lib, cfg.DefaultTermDays)
		case "return":
			handleReturn(sc, out, lib)
		case "loans":
			handleActiveLoans(out, lib)
		case "overdue":
			handleOverdue(out, lib)
		case "exit":
			if err := lib.Save(cfg.DataFile); err != nil {
				return err
			}
			fmt.Fprintln(out, "Data saved. Goodbye.")
			return nil
		case "":
		default:
			fmt.Fprintln(out, "Unknown command. Type one of the commands listed above.")
		}
	}
}

// ------------------ Prompt helpers ------------------

func prompt(sc *bufio.Scanner, out io.Writer, label string) (string, bool) {
	fmt.Fprintf(out, "%s: ", label)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

// promptInt retries until it reads an integer in [min, max].
func promptInt(sc *bufio.Scanner, out io.Writer, label string, min, max int) (int, bool) {
	for {
		s, ok := prompt(sc, out, label)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < min || n > max {
			fmt.Fprintf(out, "Enter an integer between %d and %d.\n", min, max)
			continue
		}
		return n, true
	}
}

// promptIntDefault is promptInt but an empty line takes the default.
func promptIntDefault(sc *bufio.Scanner, out io.Writer, label string, min, max, def int) (int, bool) {
	for {
		s, ok := prompt(sc, out, fmt.Sprintf("%s [%d]", label, def))
		if !ok {
			return 0, false
		}
		if s == "" {
			return def, true
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < min || n > max {
			fmt.Fprintf(out, "Enter an integer between %d and %d.\n", min, max)
			continue
		}
		return n, true
	}
}

func promptID(sc *bufio.Scanner, out io.Writer, label string) (int64, bool) {
	for {
		s, ok := prompt(sc, out, label)
		if !ok {
			return 0, false
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id < 1 {
			fmt.Fprintln(out, "Enter a positive integer ID.")
			continue
		}
		return id, true
	}
}

// ------------------ Command handlers ------------------

func handleAddBook(sc *bufio.Scanner, out io.Writer, lib *library.Library) {
	title, ok := prompt(sc, out, "Title")
	if !ok {
		return
	}
	author, ok := prompt(sc, out, "Author")
	if !ok {
		return
	}
	isbn, ok := prompt(sc, out, "ISBN")
	if !ok {
		return
	}
	copies, ok := promptInt(sc, out, "Total copies", 1, math.MaxInt32)
	if !ok {
		return
	}

	book, err := lib.AddBook(title, author, isbn, copies)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Book added with ID %d.\n", book.ID)
}

func printBook(out io.Writer, b library.Book) {
	fmt.Fprintf(out, "ID=%d | %q by %s | ISBN=%s | Available=%d/%d\n",
		b.ID, b.Title, b.Author, b.ISBN, b.CopiesAvailable, b.CopiesTotal)
}

func handleListBooks(out io.Writer, lib *library.Library) {
	books := lib.ListBooks()
	if len(books) == 0 {
		fmt.Fprintln(out, "No books in catalog.")
		return
	}
	for _, b := range books {
		printBook(out, b)
	}
}

func handleSearchBooks(sc *bufio.Scanner, out io.Writer, lib *library.Library) {
	q, ok := prompt(sc, out, "Search text (title/author/ISBN)")
	if !ok {
		return
	}
	results := lib.SearchBooks(q)
	if len(results) == 0 {
		fmt.Fprintln(out, "No matches.")
		return
	}
	for _, b := range results {
		printBook(out, b)
	}
}

func handleAddMember(sc *bufio.Scanner, out io.Writer, lib *library.Library) {
	name, ok := prompt(sc, out, "Full name")
	if !ok {
		return
	}
	email, ok := prompt(sc, out, "Email")
	if !ok {
		return
	}

	member, err := lib.RegisterMember(name, email)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Member registered with ID %d.\n", member.ID)
}

func handleListMembers(out io.Writer, lib *library.Library) {
	members := lib.ListMembers()
	if len(members) == 0 {
		fmt.Fprintln(out, "No members registered.")
		return
	}
	for _, m := range members {
		fmt.Fprintf(out, "ID=%d | %s | %s\n", m.ID, m.Name, m.Email)
	}
}

func handleBorrow(sc *bufio.Scanner, out io.Writer, lib *library.Library, defaultTermDays int) {
	memberID, ok := promptID(sc, out, "Member ID")
	if !ok {
		return
	}
	bookID, ok := promptID(sc, out, "Book ID")
	if !ok {
		return
	}
	termDays, ok := promptIntDefault(sc, out, "Loan term in days", 1, 365, defaultTermDays)
	if !ok {
		return
	}

	loan, err := lib.BorrowBook(memberID, bookID, termDays)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Loan created. Due on %s. Loan key=%s\n", loan.DueDate, loan.Key)
}

func handleReturn(sc *bufio.Scanner, out io.Writer, lib *library.Library) {
	key, ok := prompt(sc, out, "Loan key (shown at borrow time, M<memberId>-B<bookId>-<yyyyMMdd>)")
	if !ok {
		return
	}
	if err := lib.ReturnBook(key); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(out, "Return processed.")
}

// loanParties resolves the display names behind a loan's weak references.
func loanParties(lib *library.Library, l library.Loan) (string, string) {
	title := "(book missing)"
	if b, ok := lib.GetBook(l.BookID); ok {
		title = b.Title
	}
	name := "(member missing)"
	if m, ok := lib.GetMember(l.MemberID); ok {
		name = m.Name
	}
	return title, name
}

func handleActiveLoans(out io.Writer, lib *library.Library) {
	loans := lib.ListActiveLoans()
	if len(loans) == 0 {
		fmt.Fprintln(out, "No active loans.")
		return
	}
	for _, l := range loans {
		title, name := loanParties(lib, l)
		fmt.Fprintf(out, "Loan=%s | %q -> %s | Loaned=%s | Due=%s\n",
			l.Key, title, name, l.LoanDate, l.DueDate)
	}
}

func handleOverdue(out io.Writer, lib *library.Library) {
	loans := lib.ListOverdueLoans()
	if len(loans) == 0 {
		fmt.Fprintln(out, "No overdue loans.")
		return
	}
	for _, l := range loans {
		title, name := loanParties(lib, l.Loan)
		fmt.Fprintf(out, "Loan=%s | %q -> %s | Due=%s | Overdue by %d day(s)\n",
			l.Key, title, name, l.DueDate, l.OverdueDays)
	}
}
