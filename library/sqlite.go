package library

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SQLite interchange format: the same snapshot the JSON codec writes,
// as a queryable database file for external tooling. Not the live store;
// export and import move whole snapshots at the process boundary.

const sqliteSchemaVersion = 1

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`,
	`CREATE TABLE IF NOT EXISTS books (
        id INTEGER PRIMARY KEY,
        title TEXT NOT NULL,
        author TEXT NOT NULL,
        isbn TEXT NOT NULL,
        copies_total INTEGER NOT NULL,
        copies_available INTEGER NOT NULL
    );`,
	`CREATE TABLE IF NOT EXISTS members (
        id INTEGER PRIMARY KEY,
        name TEXT NOT NULL,
        email TEXT NOT NULL
    );`,
	// seq keeps ledger order; loan keys repeat after a return.
	`CREATE TABLE IF NOT EXISTS loans (
        seq INTEGER PRIMARY KEY AUTOINCREMENT,
        loan_key TEXT NOT NULL,
        member_id INTEGER NOT NULL,
        book_id INTEGER NOT NULL,
        loan_date TEXT NOT NULL,
        due_date TEXT NOT NULL,
        return_date TEXT
    );`,
}

func openSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	return db, nil
}

// ExportSQLite writes the full snapshot to a SQLite file at path,
// replacing any prior export.
func (l *Library) ExportSQLite(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove old export")
	}

	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "create schema")
		}
	}

	snap := l.Snapshot()

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin export")
	}
	defer tx.Rollback()

	meta := map[string]string{
		"schema_version": fmt.Sprint(sqliteSchemaVersion),
		"next_book_id":   fmt.Sprint(snap.NextBookID),
		"next_member_id": fmt.Sprint(snap.NextMemberID),
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES(?,?)`, k, v); err != nil {
			return errors.Wrap(err, "write meta")
		}
	}

	bookStmt, err := tx.Prepare(`INSERT INTO books(id,title,author,isbn,copies_total,copies_available) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return errors.Wrap(err, "prepare books insert")
	}
	defer bookStmt.Close()
	for _, b := range snap.Books {
		if _, err := bookStmt.Exec(b.ID, b.Title, b.Author, b.ISBN, b.CopiesTotal, b.CopiesAvailable); err != nil {
			return errors.Wrapf(err, "export book %d", b.ID)
		}
	}

	memberStmt, err := tx.Prepare(`INSERT INTO members(id,name,email) VALUES(?,?,?)`)
	if err != nil {
		return errors.Wrap(err, "prepare members insert")
	}
	defer memberStmt.Close()
	for _, m := range snap.Members {
		if _, err := memberStmt.Exec(m.ID, m.Name, m.Email); err != nil {
			return errors.Wrapf(err, "export member %d", m.ID)
		}
	}

	loanStmt, err := tx.Prepare(`INSERT INTO loans(loan_key,member_id,book_id,loan_date,due_date,return_date) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return errors.Wrap(err, "prepare loans insert")
	}
	defer loanStmt.Close()
	for _, ln := range snap.Loans {
		var returned sql.NullString
		if ln.ReturnDate != nil {
			returned = sql.NullString{String: ln.ReturnDate.String(), Valid: true}
		}
		if _, err := loanStmt.Exec(ln.Key, ln.MemberID, ln.BookID, ln.LoanDate.String(), ln.DueDate.String(), returned); err != nil {
			return errors.Wrapf(err, "export loan %s", ln.Key)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit export")
	}
	l.log.Info("sqlite export written",
		zap.String("path", path),
		zap.Int("books", len(snap.Books)),
		zap.Int("members", len(snap.Members)),
		zap.Int("loans", len(snap.Loans)))
	return nil
}

// ImportSQLite reads a previously exported database back into a fresh
// aggregate. The whole file must read cleanly before any state is built.
func ImportSQLite(path string, log *zap.Logger, opts ...Option) (*Library, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(ErrNotFound, "no export at %s", path)
	}

	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var snap Snapshot
	if snap.NextBookID, err = readMetaInt(db, "next_book_id"); err != nil {
		return nil, err
	}
	if snap.NextMemberID, err = readMetaInt(db, "next_member_id"); err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT id,title,author,isbn,copies_total,copies_available FROM books ORDER BY id`)
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptData, "read books: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.CopiesTotal, &b.CopiesAvailable); err != nil {
			return nil, errors.Wrapf(ErrCorruptData, "scan book: %v", err)
		}
		snap.Books = append(snap.Books, b)
	}

	memberRows, err := db.Query(`SELECT id,name,email FROM members ORDER BY id`)
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptData, "read members: %v", err)
	}
	defer memberRows.Close()
	for memberRows.Next() {
		var m Member
		if err := memberRows.Scan(&m.ID, &m.Name, &m.Email); err != nil {
			return nil, errors.Wrapf(ErrCorruptData, "scan member: %v", err)
		}
		snap.Members = append(snap.Members, m)
	}

	loanRows, err := db.Query(`SELECT loan_key,member_id,book_id,loan_date,due_date,return_date FROM loans ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptData, "read loans: %v", err)
	}
	defer loanRows.Close()
	for loanRows.Next() {
		var (
			ln       Loan
			loaned   string
			due      string
			returned sql.NullString
		)
		if err := loanRows.Scan(&ln.Key, &ln.MemberID, &ln.BookID, &loaned, &due, &returned); err != nil {
			return nil, errors.Wrapf(ErrCorruptData, "scan loan: %v", err)
		}
		if ln.LoanDate, err = ParseDate(loaned); err != nil {
			return nil, errors.Wrapf(ErrCorruptData, "loan %s: %v", ln.Key, err)
		}
		if ln.DueDate, err = ParseDate(due); err != nil {
			return nil, errors.Wrapf(ErrCorruptData, "loan %s: %v", ln.Key, err)
		}
		if returned.Valid {
			d, err := ParseDate(returned.String)
			if err != nil {
				return nil, errors.Wrapf(ErrCorruptData, "loan %s: %v", ln.Key, err)
			}
			ln.ReturnDate = &d
		}
		snap.Loans = append(snap.Loans, ln)
	}

	return fromSnapshot(snap, log, opts...)
}

func readMetaInt(db *sql.DB, key string) (int64, error) {
	var v int64
	if err := db.QueryRow(`SELECT value FROM meta WHERE key=?`, key).Scan(&v); err != nil {
		return 0, errors.Wrapf(ErrCorruptData, "meta %s: %v", key, err)
	}
	return v, nil
}
