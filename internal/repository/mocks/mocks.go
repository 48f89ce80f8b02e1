package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rpggio/libraryloans/internal/domain/book"
	"github.com/rpggio/libraryloans/internal/domain/loan"
	"github.com/rpggio/libraryloans/internal/domain/reader"
)

// BookManager is a mock for repository.BookManager.
type BookManager struct {
	mock.Mock
}

func (m *BookManager) Create(ctx context.Context, b *book.Book) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *BookManager) Update(ctx context.Context, b *book.Book) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *BookManager) Delete(ctx context.Context, b *book.Book) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *BookManager) GetByID(ctx context.Context, id int64) (*book.Book, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*book.Book); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BookManager) FindAll(ctx context.Context) ([]book.Book, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]book.Book); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ReaderManager is a mock for repository.ReaderManager.
type ReaderManager struct {
	mock.Mock
}

func (m *ReaderManager) Create(ctx context.Context, r *reader.Reader) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *ReaderManager) Update(ctx context.Context, r *reader.Reader) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *ReaderManager) Delete(ctx context.Context, r *reader.Reader) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *ReaderManager) GetByID(ctx context.Context, id int64) (*reader.Reader, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*reader.Reader); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReaderManager) FindAll(ctx context.Context) ([]reader.Reader, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]reader.Reader); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReaderManager) FindByName(ctx context.Context, name string) ([]reader.Reader, error) {
	args := m.Called(ctx, name)
	if list, ok := args.Get(0).([]reader.Reader); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// LoanManager is a mock for repository.LoanManager.
type LoanManager struct {
	mock.Mock
}

func (m *LoanManager) Create(ctx context.Context, l *loan.Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *LoanManager) Update(ctx context.Context, l *loan.Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *LoanManager) Delete(ctx context.Context, l *loan.Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *LoanManager) GetByID(ctx context.Context, id int64) (*loan.Loan, error) {
	args := m.Called(ctx, id)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LoanManager) FindAll(ctx context.Context) ([]loan.Loan, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]loan.Loan); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LoanManager) FindAllForReader(ctx context.Context, r *reader.Reader) ([]loan.Loan, error) {
	args := m.Called(ctx, r)
	if list, ok := args.Get(0).([]loan.Loan); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LoanManager) FindAllForBook(ctx context.Context, b *book.Book) ([]loan.Loan, error) {
	args := m.Called(ctx, b)
	if list, ok := args.Get(0).([]loan.Loan); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
