package sqldb

import (
	"context"
	"log/slog"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/rpggio/libraryloans/internal/domain"
	"github.com/rpggio/libraryloans/internal/domain/book"
)

var bookColumns = []any{"id", "title", "author", "published", "note"}

// BookManager implements repository.BookManager on top of DB.
type BookManager struct {
	db     *DB
	logger *slog.Logger
}

// NewBookManager creates a new BookManager
func NewBookManager(db *DB, logger *slog.Logger) *BookManager {
	return &BookManager{db: db, logger: ensureLogger(logger).With(logAttrEntity, book.EntityName)}
}

// Create stores a new book and assigns its generated id.
func (m *BookManager) Create(ctx context.Context, b *book.Book) error {
	if err := book.Validate(b); err != nil {
		return err
	}
	if b.ID != nil {
		return domain.NewIllegalEntityError(book.EntityName, b.ID, "id is already set")
	}

	log := operationLogger(m.logger, "create book")
	var id int64
	err := m.db.inTx(ctx, log, "create book", func(tx *sqlx.Tx) error {
		var err error
		id, err = m.db.insert(ctx, log, tx, tableBook, bookRecord(b))
		return err
	})
	if err != nil {
		return err
	}

	b.ID = &id
	log.Info("book created", logAttrID, id)
	return nil
}

// Update rewrites every mutable field of an existing book.
func (m *BookManager) Update(ctx context.Context, b *book.Book) error {
	if b == nil {
		return book.Validate(b)
	}
	if b.ID == nil {
		return domain.NewIllegalEntityError(book.EntityName, nil, "id is not set")
	}
	if err := book.Validate(b); err != nil {
		return err
	}

	id := *b.ID
	log := operationLogger(m.logger, "update book")
	err := m.db.inTx(ctx, log, "update book", func(tx *sqlx.Tx) error {
		ds := m.db.dialect.Update(tableBook).
			Set(bookRecord(b)).
			Where(goqu.C("id").Eq(id)).
			Prepared(true)
		n, err := exec(ctx, log, tx, ds)
		if err != nil {
			return err
		}
		return checkModified(n, book.EntityName, id)
	})
	if err != nil {
		return err
	}

	log.Info("book updated", logAttrID, id)
	return nil
}

// Delete removes a book. Books still referenced by a loan cannot be deleted.
func (m *BookManager) Delete(ctx context.Context, b *book.Book) error {
	if b == nil {
		return domain.NewValidationError(book.EntityName, "", "book is nil")
	}
	if b.ID == nil {
		return domain.NewIllegalEntityError(book.EntityName, nil, "id is not set")
	}

	id := *b.ID
	log := operationLogger(m.logger, "delete book")
	err := m.db.inTx(ctx, log, "delete book", func(tx *sqlx.Tx) error {
		ds := m.db.dialect.Delete(tableBook).
			Where(goqu.C("id").Eq(id)).
			Prepared(true)
		n, err := exec(ctx, log, tx, ds)
		if err != nil {
			return err
		}
		return checkModified(n, book.EntityName, id)
	})
	if err != nil {
		return err
	}

	log.Info("book deleted", logAttrID, id)
	return nil
}

// GetByID returns the book with the given id, or nil if there is none.
func (m *BookManager) GetByID(ctx context.Context, id int64) (*book.Book, error) {
	log := operationLogger(m.logger, "get book")
	var found *book.Book
	err := m.db.withConn(ctx, log, "get book", func(conn *sqlx.Conn) error {
		ds := m.db.dialect.From(tableBook).
			Select(bookColumns...).
			Where(goqu.C("id").Eq(id)).
			Prepared(true)
		rows, err := selectAll[book.Book](ctx, log, conn, ds)
		if err != nil {
			return err
		}
		found, err = single(rows, book.EntityName, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FindAll returns every book ordered by id.
func (m *BookManager) FindAll(ctx context.Context) ([]book.Book, error) {
	log := operationLogger(m.logger, "find all books")
	var books []book.Book
	err := m.db.withConn(ctx, log, "find all books", func(conn *sqlx.Conn) error {
		ds := m.db.dialect.From(tableBook).
			Select(bookColumns...).
			Order(goqu.C("id").Asc()).
			Prepared(true)
		var err error
		books, err = selectAll[book.Book](ctx, log, conn, ds)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Debug("books loaded", logAttrCount, len(books))
	return books, nil
}

func bookRecord(b *book.Book) goqu.Record {
	return goqu.Record{
		"title":     b.Title,
		"author":    b.Author,
		"published": b.Published,
		"note":      nullableString(b.Note),
	}
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
