package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"library-circulation/library"

	"go.uber.org/zap"
)

// Bulk-loads the catalog from a CSV of title,author,isbn,copies rows and
// saves the data file. Existing books, members, and loans are kept.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <catalog.csv> [data-file]\n", os.Args[0])
		os.Exit(1)
	}
	csvPath := os.Args[1]
	dataFile := "library.json"
	if len(os.Args) > 2 {
		dataFile = os.Args[2]
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	lib, err := library.Load(dataFile, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data file: %v\n", err)
		os.Exit(1)
	}
	if lib == nil {
		lib = library.New(log)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening catalog file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4
	r.TrimLeadingSpace = true

	fmt.Printf("Importing catalog from %s...\n", csvPath)

	successCount := 0
	errorCount := 0
	line := 0

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			fmt.Printf("Line %d: ERROR - %v\n", line, err)
			errorCount++
			continue
		}
		// Optional header row.
		if line == 1 && strings.EqualFold(record[0], "title") {
			continue
		}

		title, author, isbn := record[0], record[1], record[2]
		copies, err := strconv.Atoi(strings.TrimSpace(record[3]))
		if err != nil {
			fmt.Printf("Line %d: ERROR - copies %q is not an integer\n", line, record[3])
			errorCount++
			continue
		}

		fmt.Printf("Importing: %s by %s... ", title, author)
		book, err := lib.AddBook(title, author, isbn, copies)
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %d)\n", book.ID)
		successCount++
	}

	if successCount > 0 {
		if err := lib.Save(dataFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving data file: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nCatalog:")
		fmt.Printf("%-3s %-50s %-30s %s\n", "ID", "Title", "Author", "Copies")
		fmt.Println(strings.Repeat("-", 95))
		for _, b := range lib.ListBooks() {
			fmt.Printf("%-3d %-50s %-30s %d/%d\n",
				b.ID, truncateString(b.Title, 50), truncateString(b.Author, 30),
				b.CopiesAvailable, b.CopiesTotal)
		}
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
