package sqldb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/go-openapi/strfmt"
	"github.com/jmoiron/sqlx"

	"github.com/rpggio/libraryloans/internal/domain"
	"github.com/rpggio/libraryloans/internal/domain/book"
	"github.com/rpggio/libraryloans/internal/domain/loan"
	"github.com/rpggio/libraryloans/internal/domain/reader"
)

var loanColumns = []any{"id", "reader_id", "book_id", "start_date", "expected_end_date", "real_end_time"}

// ReaderLookup resolves the reader a stored loan points to.
type ReaderLookup interface {
	GetByID(ctx context.Context, id int64) (*reader.Reader, error)
}

// BookLookup resolves the book a stored loan points to.
type BookLookup interface {
	GetByID(ctx context.Context, id int64) (*book.Book, error)
}

type loanRow struct {
	ID              int64            `db:"id"`
	ReaderID        int64            `db:"reader_id"`
	BookID          int64            `db:"book_id"`
	StartDate       *strfmt.Date     `db:"start_date"`
	ExpectedEndDate *strfmt.Date     `db:"expected_end_date"`
	RealEndTime     *strfmt.DateTime `db:"real_end_time"`
}

// LoanManager implements repository.LoanManager on top of DB. Loans store
// only the ids of their reader and book; both are re-read on every load.
type LoanManager struct {
	db      *DB
	readers ReaderLookup
	books   BookLookup
	clock   loan.Clock
	logger  *slog.Logger
}

// NewLoanManager creates a new LoanManager. A nil clock reads the system
// clock in UTC.
func NewLoanManager(db *DB, readers ReaderLookup, books BookLookup, clock loan.Clock, logger *slog.Logger) *LoanManager {
	if clock == nil {
		clock = loan.SystemClock(time.UTC)
	}
	return &LoanManager{
		db:      db,
		readers: readers,
		books:   books,
		clock:   clock,
		logger:  ensureLogger(logger).With(logAttrEntity, loan.EntityName),
	}
}

// Create stores a new loan and assigns its generated id.
func (m *LoanManager) Create(ctx context.Context, l *loan.Loan) error {
	if err := loan.Validate(l, m.clock); err != nil {
		return err
	}
	if l.ID != nil {
		return domain.NewIllegalEntityError(loan.EntityName, l.ID, "id is already set")
	}
	if err := loan.ValidateReferences(l); err != nil {
		return err
	}

	log := operationLogger(m.logger, "create loan")
	var id int64
	err := m.db.inTx(ctx, log, "create loan", func(tx *sqlx.Tx) error {
		var err error
		id, err = m.db.insert(ctx, log, tx, tableLoan, loanRecord(l))
		return err
	})
	if err != nil {
		return err
	}

	l.ID = &id
	log.Info("loan created", logAttrID, id, "reader_id", *l.Reader.ID, "book_id", *l.Book.ID)
	return nil
}

// Update rewrites the references and dates of an existing loan.
func (m *LoanManager) Update(ctx context.Context, l *loan.Loan) error {
	if l == nil {
		return loan.Validate(l, m.clock)
	}
	if l.ID == nil {
		return domain.NewIllegalEntityError(loan.EntityName, nil, "id is not set")
	}
	if err := loan.Validate(l, m.clock); err != nil {
		return err
	}
	if err := loan.ValidateReferences(l); err != nil {
		return err
	}

	id := *l.ID
	log := operationLogger(m.logger, "update loan")
	err := m.db.inTx(ctx, log, "update loan", func(tx *sqlx.Tx) error {
		ds := m.db.dialect.Update(tableLoan).
			Set(loanRecord(l)).
			Where(goqu.C("id").Eq(id)).
			Prepared(true)
		n, err := exec(ctx, log, tx, ds)
		if err != nil {
			return err
		}
		return checkModified(n, loan.EntityName, id)
	})
	if err != nil {
		return err
	}

	log.Info("loan updated", logAttrID, id)
	return nil
}

// Delete removes a loan.
func (m *LoanManager) Delete(ctx context.Context, l *loan.Loan) error {
	if l == nil {
		return domain.NewValidationError(loan.EntityName, "", "loan is nil")
	}
	if l.ID == nil {
		return domain.NewIllegalEntityError(loan.EntityName, nil, "id is not set")
	}

	id := *l.ID
	log := operationLogger(m.logger, "delete loan")
	err := m.db.inTx(ctx, log, "delete loan", func(tx *sqlx.Tx) error {
		ds := m.db.dialect.Delete(tableLoan).
			Where(goqu.C("id").Eq(id)).
			Prepared(true)
		n, err := exec(ctx, log, tx, ds)
		if err != nil {
			return err
		}
		return checkModified(n, loan.EntityName, id)
	})
	if err != nil {
		return err
	}

	log.Info("loan deleted", logAttrID, id)
	return nil
}

// GetByID returns the loan with the given id and its resolved reader and
// book, or nil if there is no such loan.
func (m *LoanManager) GetByID(ctx context.Context, id int64) (*loan.Loan, error) {
	const op = "get loan"
	log := operationLogger(m.logger, op)

	var row *loanRow
	err := m.db.withConn(ctx, log, op, func(conn *sqlx.Conn) error {
		rows, err := selectAll[loanRow](ctx, log, conn, m.selectLoans(goqu.C("id").Eq(id)))
		if err != nil {
			return err
		}
		row, err = single(rows, loan.EntityName, id)
		return err
	})
	if err != nil || row == nil {
		return nil, err
	}

	l, err := m.resolve(ctx, log, op, *row)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FindAll returns every loan ordered by id.
func (m *LoanManager) FindAll(ctx context.Context) ([]loan.Loan, error) {
	return m.find(ctx, "find all loans", nil)
}

// FindAllForReader returns the loans of a persisted reader.
func (m *LoanManager) FindAllForReader(ctx context.Context, r *reader.Reader) ([]loan.Loan, error) {
	if r == nil {
		return nil, domain.NewValidationError(loan.EntityName, "reader", "must not be nil")
	}
	if r.ID == nil {
		return nil, domain.NewIllegalEntityError(reader.EntityName, nil, "id is not set")
	}
	return m.find(ctx, "find loans for reader", goqu.C("reader_id").Eq(*r.ID))
}

// FindAllForBook returns the loans of a persisted book.
func (m *LoanManager) FindAllForBook(ctx context.Context, b *book.Book) ([]loan.Loan, error) {
	if b == nil {
		return nil, domain.NewValidationError(loan.EntityName, "book", "must not be nil")
	}
	if b.ID == nil {
		return nil, domain.NewIllegalEntityError(book.EntityName, nil, "id is not set")
	}
	return m.find(ctx, "find loans for book", goqu.C("book_id").Eq(*b.ID))
}

// find loads the matching rows first and resolves references only after the
// connection is released, so the lookups never wait on it.
func (m *LoanManager) find(ctx context.Context, op string, where exp.Expression) ([]loan.Loan, error) {
	log := operationLogger(m.logger, op)

	var rows []loanRow
	err := m.db.withConn(ctx, log, op, func(conn *sqlx.Conn) error {
		var err error
		rows, err = selectAll[loanRow](ctx, log, conn, m.selectLoans(where))
		return err
	})
	if err != nil {
		return nil, err
	}

	loans := make([]loan.Loan, 0, len(rows))
	for _, row := range rows {
		l, err := m.resolve(ctx, log, op, row)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}

	log.Debug("loans loaded", logAttrCount, len(loans))
	return loans, nil
}

func (m *LoanManager) selectLoans(where exp.Expression) *goqu.SelectDataset {
	ds := m.db.dialect.From(tableLoan).
		Select(loanColumns...).
		Order(goqu.C("id").Asc()).
		Prepared(true)
	if where != nil {
		ds = ds.Where(where)
	}
	return ds
}

func (m *LoanManager) resolve(ctx context.Context, log *slog.Logger, op string, row loanRow) (loan.Loan, error) {
	r, err := m.readers.GetByID(ctx, row.ReaderID)
	if err != nil {
		return loan.Loan{}, passThrough(log, op, err)
	}
	if r == nil {
		return loan.Loan{}, failure(log, op,
			fmt.Errorf("%w: loan %d refers to missing reader %d", domain.ErrDanglingReference, row.ID, row.ReaderID))
	}

	b, err := m.books.GetByID(ctx, row.BookID)
	if err != nil {
		return loan.Loan{}, passThrough(log, op, err)
	}
	if b == nil {
		return loan.Loan{}, failure(log, op,
			fmt.Errorf("%w: loan %d refers to missing book %d", domain.ErrDanglingReference, row.ID, row.BookID))
	}

	id := row.ID
	return loan.Loan{
		ID:              &id,
		Reader:          r,
		Book:            b,
		StartDate:       row.StartDate,
		ExpectedEndDate: row.ExpectedEndDate,
		RealEndTime:     row.RealEndTime,
	}, nil
}

func passThrough(log *slog.Logger, op string, err error) error {
	if isDomainError(err) {
		return err
	}
	return failure(log, op, err)
}

func loanRecord(l *loan.Loan) goqu.Record {
	return goqu.Record{
		"reader_id":         *l.Reader.ID,
		"book_id":           *l.Book.ID,
		"start_date":        nullableDate(l.StartDate),
		"expected_end_date": nullableDate(l.ExpectedEndDate),
		"real_end_time":     nullableDateTime(l.RealEndTime),
	}
}

func nullableDate(d *strfmt.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullableDateTime(dt *strfmt.DateTime) any {
	if dt == nil {
		return nil
	}
	return time.Time(*dt).UTC().Format(time.RFC3339Nano)
}
