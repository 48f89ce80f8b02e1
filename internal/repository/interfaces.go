package repository

import (
	"context"

	"github.com/rpggio/libraryloans/internal/domain/book"
	"github.com/rpggio/libraryloans/internal/domain/loan"
	"github.com/rpggio/libraryloans/internal/domain/reader"
)

// BookManager manages book persistence
type BookManager interface {
	Create(ctx context.Context, b *book.Book) error
	Update(ctx context.Context, b *book.Book) error
	Delete(ctx context.Context, b *book.Book) error
	GetByID(ctx context.Context, id int64) (*book.Book, error)
	FindAll(ctx context.Context) ([]book.Book, error)
}

// ReaderManager manages reader persistence
type ReaderManager interface {
	Create(ctx context.Context, r *reader.Reader) error
	Update(ctx context.Context, r *reader.Reader) error
	Delete(ctx context.Context, r *reader.Reader) error
	GetByID(ctx context.Context, id int64) (*reader.Reader, error)
	FindAll(ctx context.Context) ([]reader.Reader, error)
	FindByName(ctx context.Context, name string) ([]reader.Reader, error)
}

// LoanManager manages loan persistence. Loaded loans carry fully resolved
// readers and books.
type LoanManager interface {
	Create(ctx context.Context, l *loan.Loan) error
	Update(ctx context.Context, l *loan.Loan) error
	Delete(ctx context.Context, l *loan.Loan) error
	GetByID(ctx context.Context, id int64) (*loan.Loan, error)
	FindAll(ctx context.Context) ([]loan.Loan, error)
	FindAllForReader(ctx context.Context, r *reader.Reader) ([]loan.Loan, error)
	FindAllForBook(ctx context.Context, b *book.Book) ([]loan.Loan, error)
}
