package sqldb

import (
	"context"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/libraryloans/internal/domain"
	"github.com/rpggio/libraryloans/internal/domain/book"
	"github.com/rpggio/libraryloans/internal/domain/loan"
	"github.com/rpggio/libraryloans/internal/domain/reader"
	"github.com/rpggio/libraryloans/internal/repository/mocks"
)

var testNow = time.Date(2016, time.March, 27, 14, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *strfmt.Date {
	v := strfmt.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	return &v
}

func dateTime(t time.Time) *strfmt.DateTime {
	v := strfmt.DateTime(t)
	return &v
}

type loanFixture struct {
	books   *BookManager
	readers *ReaderManager
	loans   *LoanManager
	book1   *book.Book
	book2   *book.Book
	reader1 *reader.Reader
	reader2 *reader.Reader
}

func newLoanFixture(t *testing.T, db *DB) *loanFixture {
	t.Helper()
	ctx := context.Background()

	f := &loanFixture{
		books:   NewBookManager(db, nil),
		readers: NewReaderManager(db, nil),
		book1:   newBook1(),
		book2:   newBook2(),
		reader1: newReader1(),
		reader2: newReader2(),
	}
	f.loans = NewLoanManager(db, f.readers, f.books, loan.FixedClock(testNow), nil)

	require.NoError(t, f.books.Create(ctx, f.book1))
	require.NoError(t, f.books.Create(ctx, f.book2))
	require.NoError(t, f.readers.Create(ctx, f.reader1))
	require.NoError(t, f.readers.Create(ctx, f.reader2))
	return f
}

func (f *loanFixture) loan1() *loan.Loan {
	return &loan.Loan{
		Reader:          f.reader1,
		Book:            f.book1,
		StartDate:       date(2015, time.September, 19),
		ExpectedEndDate: date(2015, time.October, 19),
		RealEndTime:     dateTime(time.Date(2015, time.October, 18, 11, 23, 0, 0, time.UTC)),
	}
}

func (f *loanFixture) loan2() *loan.Loan {
	return &loan.Loan{
		Reader:          f.reader2,
		Book:            f.book2,
		StartDate:       date(2016, time.January, 5),
		ExpectedEndDate: date(2016, time.February, 5),
	}
}

func requireSameLoan(t *testing.T, want *loan.Loan, got *loan.Loan) {
	t.Helper()
	require.NotNil(t, got)
	require.True(t, want.Equal(got), "got %v, want %v", got, want)
	require.True(t, want.Reader.Equal(got.Reader))
	require.True(t, want.Book.Equal(got.Book))
	require.Equal(t, want.StartDate.String(), got.StartDate.String())
	require.Equal(t, want.ExpectedEndDate.String(), got.ExpectedEndDate.String())
	if want.RealEndTime == nil {
		require.Nil(t, got.RealEndTime)
	} else {
		require.NotNil(t, got.RealEndTime)
		require.True(t, time.Time(*want.RealEndTime).Equal(time.Time(*got.RealEndTime)),
			"real end %v, want %v", got.RealEndTime, want.RealEndTime)
	}
}

func TestLoanManager_Create(t *testing.T) {
	f := newLoanFixture(t, NewTestDB(t))
	ctx := context.Background()

	l := f.loan1()
	require.NoError(t, f.loans.Create(ctx, l))
	require.NotNil(t, l.ID)

	retrieved, err := f.loans.GetByID(ctx, *l.ID)
	require.NoError(t, err)
	requireSameLoan(t, l, retrieved)
	require.NotSame(t, f.reader1, retrieved.Reader)

	open := f.loan2()
	require.NoError(t, f.loans.Create(ctx, open))
	require.NotEqual(t, *l.ID, *open.ID)

	retrieved, err = f.loans.GetByID(ctx, *open.ID)
	require.NoError(t, err)
	requireSameLoan(t, open, retrieved)
	require.False(t, retrieved.IsReturned())
}

func TestLoanManager_CreateStartingToday(t *testing.T) {
	f := newLoanFixture(t, NewTestDB(t))

	l := f.loan2()
	l.StartDate = date(2016, time.March, 27)
	l.ExpectedEndDate = date(2016, time.April, 27)
	require.NoError(t, f.loans.Create(context.Background(), l))
}

func TestLoanManager_CreateRejected(t *testing.T) {
	f := newLoanFixture(t, NewTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(l *loan.Loan)
		want   error
	}{
		{name: "no reader", mutate: func(l *loan.Loan) { l.Reader = nil }, want: domain.ErrValidation},
		{name: "no book", mutate: func(l *loan.Loan) { l.Book = nil }, want: domain.ErrValidation},
		{
			name:   "end before start",
			mutate: func(l *loan.Loan) { l.ExpectedEndDate = date(2015, time.September, 18) },
			want:   domain.ErrValidation,
		},
		{
			name: "start tomorrow",
			mutate: func(l *loan.Loan) {
				l.StartDate = date(2016, time.March, 28)
				l.ExpectedEndDate = date(2016, time.April, 28)
			},
			want: domain.ErrValidation,
		},
		{name: "id set", mutate: func(l *loan.Loan) { l.ID = ptr(int64(1)) }, want: domain.ErrIllegalEntity},
		{
			name:   "reader not stored",
			mutate: func(l *loan.Loan) { l.Reader = newReader1() },
			want:   domain.ErrIllegalEntity,
		},
		{
			name:   "book not stored",
			mutate: func(l *loan.Loan) { l.Book = newBook1() },
			want:   domain.ErrIllegalEntity,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := f.loan1()
			tc.mutate(l)
			require.ErrorIs(t, f.loans.Create(ctx, l), tc.want)
		})
	}

	require.ErrorIs(t, f.loans.Create(ctx, nil), domain.ErrValidation)

	loans, err := f.loans.FindAll(ctx)
	require.NoError(t, err)
	require.Empty(t, loans)
}

func TestLoanManager_CreateWithUnknownReader(t *testing.T) {
	f := newLoanFixture(t, NewTestDB(t))

	l := f.loan1()
	l.Reader = newReader1()
	l.Reader.ID = ptr(int64(999))

	err := f.loans.Create(context.Background(), l)
	require.ErrorIs(t, err, domain.ErrServiceFailure)
	require.ErrorIs(t, err, domain.ErrForeignKeyViolation)
	require.Nil(t, l.ID)
}

func TestLoanManager_GetByIDMissing(t *testing.T) {
	f := newLoanFixture(t, NewTestDB(t))

	retrieved, err := f.loans.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.Nil(t, retrieved)
}

func TestLoanManager_FindAll(t *testing.T) {
	f := newLoanFixture(t, NewTestDB(t))
	ctx := context.Background()

	loans, err := f.loans.FindAll(ctx)
	require.NoError(t, err)
	require.NotNil(t, loans)
	require.Empty(t, loans)

	l1, l2 := f.loan1(), f.loan2()
	require.NoError(t, f.loans.Create(ctx, l1))
	require.NoError(t, f.loans.Create(ctx, l2))

	loans, err = f.loans.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, loans, 2)
	requireSameLoan(t, l1, &loans[0])
	requireSameLoan(t, l2, &loans[1])
}

func TestLoanManager_FindAllForReaderAndBook(t *testing.T) {
	f := newLoanFixture(t, NewTestDB(t))
	ctx := context.Background()

	l1, l2 := f.loan1(), f.loan2()
	require.NoError(t, f.loans.Create(ctx, l1))
	require.NoError(t, f.loans.Create(ctx, l2))

	again := f.loan2()
	again.Reader = f.reader1
	require.NoError(t, f.loans.Create(ctx, again))

	byReader, err := f.loans.FindAllForReader(ctx, f.reader1)
	require.NoError(t, err)
	require.Len(t, byReader, 2)
	requireSameLoan(t, l1, &byReader[0])
	requireSameLoan(t, again, &byReader[1])

	byReader, err = f.loans.FindAllForReader(ctx, f.reader2)
	require.NoError(t, err)
	require.Len(t, byReader, 1)
	requireSameLoan(t, l2, &byReader[0])

	byBook, err := f.loans.FindAllForBook(ctx, f.book2)
	require.NoError(t, err)
	require.Len(t, byBook, 2)
	requireSameLoan(t, l2, &byBook[0])
	requireSameLoan(t, again, &byBook[1])

	stranger := newReader1()
	stranger.Name = "Jan"
	require.NoError(t, f.readers.Create(ctx, stranger))
	byReader, err = f.loans.FindAllForReader(ctx, stranger)
	require.NoError(t, err)
	require.NotNil(t, byReader)
	require.Empty(t, byReader)
}

func TestLoanManager_FindAllForRejected(t *testing.T) {
	f := newLoanFixture(t, NewTestDB(t))
	ctx := context.Background()

	_, err := f.loans.FindAllForReader(ctx, nil)
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.loans.FindAllForReader(ctx, newReader1())
	require.ErrorIs(t, err, domain.ErrIllegalEntity)

	_, err = f.loans.FindAllForBook(ctx, nil)
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.loans.FindAllForBook(ctx, newBook1())
	require.ErrorIs(t, err, domain.ErrIllegalEntity)
}

func TestLoanManager_Update(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *loanFixture, l *loan.Loan)
	}{
		{name: "reader", mutate: func(f *loanFixture, l *loan.Loan) { l.Reader = f.reader2 }},
		{name: "book", mutate: func(f *loanFixture, l *loan.Loan) { l.Book = f.book2 }},
		{name: "start date", mutate: func(_ *loanFixture, l *loan.Loan) { l.StartDate = date(2015, time.September, 20) }},
		{name: "expected end", mutate: func(_ *loanFixture, l *loan.Loan) { l.ExpectedEndDate = date(2016, time.March, 5) }},
		{
			name:   "returned",
			mutate: func(_ *loanFixture, l *loan.Loan) { l.RealEndTime = dateTime(time.Date(2016, time.March, 1, 9, 30, 15, 0, time.UTC)) },
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newLoanFixture(t, NewTestDB(t))
			ctx := context.Background()

			target := f.loan2()
			other := f.loan1()
			require.NoError(t, f.loans.Create(ctx, target))
			require.NoError(t, f.loans.Create(ctx, other))

			tc.mutate(f, target)
			require.NoError(t, f.loans.Update(ctx, target))

			retrieved, err := f.loans.GetByID(ctx, *target.ID)
			require.NoError(t, err)
			requireSameLoan(t, target, retrieved)

			untouched, err := f.loans.GetByID(ctx, *other.ID)
			require.NoError(t, err)
			requireSameLoan(t, other, untouched)
		})
	}
}

func TestLoanManager_UpdateRejected(t *testing.T) {
	f := newLoanFixture(t, NewTestDB(t))
	ctx := context.Background()

	stored := f.loan1()
	require.NoError(t, f.loans.Create(ctx, stored))

	require.ErrorIs(t, f.loans.Update(ctx, nil), domain.ErrValidation)
	require.ErrorIs(t, f.loans.Update(ctx, f.loan2()), domain.ErrIllegalEntity)

	unknown := f.loan2()
	unknown.ID = ptr(*stored.ID + 1)
	require.ErrorIs(t, f.loans.Update(ctx, unknown), domain.ErrIllegalEntity)

	invalid := *stored
	invalid.ExpectedEndDate = date(2015, time.January, 1)
	require.ErrorIs(t, f.loans.Update(ctx, &invalid), domain.ErrValidation)

	unstored := *stored
	unstored.Book = newBook2()
	require.ErrorIs(t, f.loans.Update(ctx, &unstored), domain.ErrIllegalEntity)

	retrieved, err := f.loans.GetByID(ctx, *stored.ID)
	require.NoError(t, err)
	requireSameLoan(t, stored, retrieved)
}

func TestLoanManager_Delete(t *testing.T) {
	f := newLoanFixture(t, NewTestDB(t))
	ctx := context.Background()

	l1, l2 := f.loan1(), f.loan2()
	require.NoError(t, f.loans.Create(ctx, l1))
	require.NoError(t, f.loans.Create(ctx, l2))

	require.NoError(t, f.loans.Delete(ctx, l1))

	gone, err := f.loans.GetByID(ctx, *l1.ID)
	require.NoError(t, err)
	require.Nil(t, gone)

	kept, err := f.loans.GetByID(ctx, *l2.ID)
	require.NoError(t, err)
	requireSameLoan(t, l2, kept)

	// The reader and book outlive the loan.
	r, err := f.readers.GetByID(ctx, *f.reader1.ID)
	require.NoError(t, err)
	require.NotNil(t, r)

	require.ErrorIs(t, f.loans.Delete(ctx, nil), domain.ErrValidation)
	require.ErrorIs(t, f.loans.Delete(ctx, f.loan1()), domain.ErrIllegalEntity)
	require.ErrorIs(t, f.loans.Delete(ctx, l1), domain.ErrIllegalEntity)
}

func TestLoanManager_ReferencedEntitiesCannotBeDeleted(t *testing.T) {
	f := newLoanFixture(t, NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, f.loans.Create(ctx, f.loan1()))

	err := f.books.Delete(ctx, f.book1)
	require.ErrorIs(t, err, domain.ErrServiceFailure)
	require.ErrorIs(t, err, domain.ErrForeignKeyViolation)

	err = f.readers.Delete(ctx, f.reader1)
	require.ErrorIs(t, err, domain.ErrServiceFailure)
	require.ErrorIs(t, err, domain.ErrForeignKeyViolation)

	b, err := f.books.GetByID(ctx, *f.book1.ID)
	require.NoError(t, err)
	require.NotNil(t, b)
}

func TestLoanManager_ResolvesCurrentReader(t *testing.T) {
	f := newLoanFixture(t, NewTestDB(t))
	ctx := context.Background()

	l := f.loan1()
	require.NoError(t, f.loans.Create(ctx, l))

	f.reader1.Address = "Praha 5"
	require.NoError(t, f.readers.Update(ctx, f.reader1))

	retrieved, err := f.loans.GetByID(ctx, *l.ID)
	require.NoError(t, err)
	require.Equal(t, "Praha 5", retrieved.Reader.Address)
}

func TestLoanManager_DanglingReference(t *testing.T) {
	db := NewTestDB(t)
	f := newLoanFixture(t, db)
	ctx := context.Background()

	l := f.loan1()
	require.NoError(t, f.loans.Create(ctx, l))

	readers := new(mocks.ReaderManager)
	readers.On("GetByID", mock.Anything, *f.reader1.ID).Return(nil, nil)
	loans := NewLoanManager(db, readers, f.books, loan.FixedClock(testNow), nil)

	_, err := loans.GetByID(ctx, *l.ID)
	require.ErrorIs(t, err, domain.ErrServiceFailure)
	require.ErrorIs(t, err, domain.ErrDanglingReference)

	_, err = loans.FindAll(ctx)
	require.ErrorIs(t, err, domain.ErrDanglingReference)

	readers.AssertExpectations(t)
}

func TestLoanManager_LookupFailure(t *testing.T) {
	db := NewTestDB(t)
	f := newLoanFixture(t, db)
	ctx := context.Background()

	require.NoError(t, f.loans.Create(ctx, f.loan1()))

	books := new(mocks.BookManager)
	books.On("GetByID", mock.Anything, *f.book1.ID).Return(nil, errStoreUnavailable)
	loans := NewLoanManager(db, f.readers, books, loan.FixedClock(testNow), nil)

	_, err := loans.FindAllForBook(ctx, f.book1)
	require.ErrorIs(t, err, domain.ErrServiceFailure)
	require.ErrorIs(t, err, errStoreUnavailable)

	books.AssertExpectations(t)
}

func TestLoanManager_StoreFailure(t *testing.T) {
	db := NewTestDB(t)
	f := newLoanFixture(t, db)
	ctx := context.Background()

	broken := db.WithConnProvider(failingConns{err: errStoreUnavailable})
	loans := NewLoanManager(broken, f.readers, f.books, loan.FixedClock(testNow), nil)

	assertFailure := func(t *testing.T, err error) {
		t.Helper()
		require.ErrorIs(t, err, domain.ErrServiceFailure)
		require.ErrorIs(t, err, errStoreUnavailable)
	}

	l := f.loan1()
	assertFailure(t, loans.Create(ctx, l))
	require.Nil(t, l.ID)

	stored := f.loan1()
	stored.ID = ptr(int64(1))
	assertFailure(t, loans.Update(ctx, stored))
	assertFailure(t, loans.Delete(ctx, stored))

	_, err := loans.GetByID(ctx, 1)
	assertFailure(t, err)

	_, err = loans.FindAll(ctx)
	assertFailure(t, err)

	_, err = loans.FindAllForReader(ctx, f.reader1)
	assertFailure(t, err)

	_, err = loans.FindAllForBook(ctx, f.book1)
	assertFailure(t, err)
}
