// Package seed loads a library fixture and stores it through the managers,
// so every record passes the same validation as any other write.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-openapi/strfmt"
	jsoniter "github.com/json-iterator/go"

	"github.com/rpggio/libraryloans/internal/domain/book"
	"github.com/rpggio/libraryloans/internal/domain/loan"
	"github.com/rpggio/libraryloans/internal/domain/reader"
	"github.com/rpggio/libraryloans/internal/repository"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Fixture is the decoded seed file. Loans refer to books and readers by key.
type Fixture struct {
	Books   []BookEntry   `json:"books"`
	Readers []ReaderEntry `json:"readers"`
	Loans   []LoanEntry   `json:"loans"`
}

type BookEntry struct {
	Key       string  `json:"key"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Published int     `json:"published"`
	Note      *string `json:"note,omitempty"`
}

type ReaderEntry struct {
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Email   string  `json:"email"`
	Note    *string `json:"note,omitempty"`
}

type LoanEntry struct {
	Reader          string           `json:"reader"`
	Book            string           `json:"book"`
	StartDate       *strfmt.Date     `json:"start_date,omitempty"`
	ExpectedEndDate *strfmt.Date     `json:"expected_end_date,omitempty"`
	RealEndTime     *strfmt.DateTime `json:"real_end_time,omitempty"`
}

// Managers groups the stores a fixture is written to.
type Managers struct {
	Books   repository.BookManager
	Readers repository.ReaderManager
	Loans   repository.LoanManager
}

// Result counts the records created by Apply.
type Result struct {
	Books   int
	Readers int
	Loans   int
}

// Decode reads a fixture and checks that its keys are unique and resolvable.
func Decode(r io.Reader) (*Fixture, error) {
	var f Fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile decodes the fixture stored at path.
func LoadFile(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

func (f *Fixture) check() error {
	books := make(map[string]bool, len(f.Books))
	for i, b := range f.Books {
		if b.Key == "" {
			return fmt.Errorf("book %d: missing key", i)
		}
		if books[b.Key] {
			return fmt.Errorf("book %d: duplicate key %q", i, b.Key)
		}
		books[b.Key] = true
	}

	readers := make(map[string]bool, len(f.Readers))
	for i, r := range f.Readers {
		if r.Key == "" {
			return fmt.Errorf("reader %d: missing key", i)
		}
		if readers[r.Key] {
			return fmt.Errorf("reader %d: duplicate key %q", i, r.Key)
		}
		readers[r.Key] = true
	}

	for i, l := range f.Loans {
		if !readers[l.Reader] {
			return fmt.Errorf("loan %d: unknown reader %q", i, l.Reader)
		}
		if !books[l.Book] {
			return fmt.Errorf("loan %d: unknown book %q", i, l.Book)
		}
	}
	return nil
}

// Apply creates books, then readers, then loans. It stops at the first
// failure; records created before it stay in place.
func Apply(ctx context.Context, f *Fixture, m Managers, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var res Result

	books := make(map[string]*book.Book, len(f.Books))
	for _, entry := range f.Books {
		b := &book.Book{
			Title:     entry.Title,
			Author:    entry.Author,
			Published: entry.Published,
			Note:      entry.Note,
		}
		if err := m.Books.Create(ctx, b); err != nil {
			return res, fmt.Errorf("failed to seed book %q: %w", entry.Key, err)
		}
		books[entry.Key] = b
		res.Books++
	}

	readers := make(map[string]*reader.Reader, len(f.Readers))
	for _, entry := range f.Readers {
		r := &reader.Reader{
			Name:    entry.Name,
			Address: entry.Address,
			Email:   entry.Email,
			Note:    entry.Note,
		}
		if err := m.Readers.Create(ctx, r); err != nil {
			return res, fmt.Errorf("failed to seed reader %q: %w", entry.Key, err)
		}
		readers[entry.Key] = r
		res.Readers++
	}

	for i, entry := range f.Loans {
		l := &loan.Loan{
			Reader:          readers[entry.Reader],
			Book:            books[entry.Book],
			StartDate:       entry.StartDate,
			ExpectedEndDate: entry.ExpectedEndDate,
			RealEndTime:     entry.RealEndTime,
		}
		if err := m.Loans.Create(ctx, l); err != nil {
			return res, fmt.Errorf("failed to seed loan %d: %w", i, err)
		}
		res.Loans++
	}

	logger.Info("fixture applied", "books", res.Books, "readers", res.Readers, "loans", res.Loans)
	return res, nil
}
