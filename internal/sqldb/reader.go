package sqldb

import (
	"context"
	"log/slog"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/rpggio/libraryloans/internal/domain"
	"github.com/rpggio/libraryloans/internal/domain/reader"
)

var readerColumns = []any{"id", "name", "address", "email", "note"}

// ReaderManager implements repository.ReaderManager on top of DB.
type ReaderManager struct {
	db     *DB
	logger *slog.Logger
}

// NewReaderManager creates a new ReaderManager
func NewReaderManager(db *DB, logger *slog.Logger) *ReaderManager {
	return &ReaderManager{db: db, logger: ensureLogger(logger).With(logAttrEntity, reader.EntityName)}
}

// Create stores a new reader and assigns its generated id.
func (m *ReaderManager) Create(ctx context.Context, r *reader.Reader) error {
	if err := reader.Validate(r); err != nil {
		return err
	}
	if r.ID != nil {
		return domain.NewIllegalEntityError(reader.EntityName, r.ID, "id is already set")
	}

	log := operationLogger(m.logger, "create reader")
	var id int64
	err := m.db.inTx(ctx, log, "create reader", func(tx *sqlx.Tx) error {
		var err error
		id, err = m.db.insert(ctx, log, tx, tableReader, readerRecord(r))
		return err
	})
	if err != nil {
		return err
	}

	r.ID = &id
	log.Info("reader created", logAttrID, id)
	return nil
}

// Update rewrites every mutable field of an existing reader.
func (m *ReaderManager) Update(ctx context.Context, r *reader.Reader) error {
	if r == nil {
		return reader.Validate(r)
	}
	if r.ID == nil {
		return domain.NewIllegalEntityError(reader.EntityName, nil, "id is not set")
	}
	if err := reader.Validate(r); err != nil {
		return err
	}

	id := *r.ID
	log := operationLogger(m.logger, "update reader")
	err := m.db.inTx(ctx, log, "update reader", func(tx *sqlx.Tx) error {
		ds := m.db.dialect.Update(tableReader).
			Set(readerRecord(r)).
			Where(goqu.C("id").Eq(id)).
			Prepared(true)
		n, err := exec(ctx, log, tx, ds)
		if err != nil {
			return err
		}
		return checkModified(n, reader.EntityName, id)
	})
	if err != nil {
		return err
	}

	log.Info("reader updated", logAttrID, id)
	return nil
}

// Delete removes a reader. Readers with loans on record cannot be deleted.
func (m *ReaderManager) Delete(ctx context.Context, r *reader.Reader) error {
	if r == nil {
		return domain.NewValidationError(reader.EntityName, "", "reader is nil")
	}
	if r.ID == nil {
		return domain.NewIllegalEntityError(reader.EntityName, nil, "id is not set")
	}

	id := *r.ID
	log := operationLogger(m.logger, "delete reader")
	err := m.db.inTx(ctx, log, "delete reader", func(tx *sqlx.Tx) error {
		ds := m.db.dialect.Delete(tableReader).
			Where(goqu.C("id").Eq(id)).
			Prepared(true)
		n, err := exec(ctx, log, tx, ds)
		if err != nil {
			return err
		}
		return checkModified(n, reader.EntityName, id)
	})
	if err != nil {
		return err
	}

	log.Info("reader deleted", logAttrID, id)
	return nil
}

// GetByID returns the reader with the given id, or nil if there is none.
func (m *ReaderManager) GetByID(ctx context.Context, id int64) (*reader.Reader, error) {
	log := operationLogger(m.logger, "get reader")
	var found *reader.Reader
	err := m.db.withConn(ctx, log, "get reader", func(conn *sqlx.Conn) error {
		ds := m.db.dialect.From(tableReader).
			Select(readerColumns...).
			Where(goqu.C("id").Eq(id)).
			Prepared(true)
		rows, err := selectAll[reader.Reader](ctx, log, conn, ds)
		if err != nil {
			return err
		}
		found, err = single(rows, reader.EntityName, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FindAll returns every reader ordered by id.
func (m *ReaderManager) FindAll(ctx context.Context) ([]reader.Reader, error) {
	return m.find(ctx, "find all readers", nil)
}

// FindByName returns the readers whose name equals name exactly.
func (m *ReaderManager) FindByName(ctx context.Context, name string) ([]reader.Reader, error) {
	return m.find(ctx, "find readers by name", goqu.C("name").Eq(name))
}

func (m *ReaderManager) find(ctx context.Context, op string, where exp.Expression) ([]reader.Reader, error) {
	log := operationLogger(m.logger, op)
	var readers []reader.Reader
	err := m.db.withConn(ctx, log, op, func(conn *sqlx.Conn) error {
		ds := m.db.dialect.From(tableReader).
			Select(readerColumns...).
			Order(goqu.C("id").Asc()).
			Prepared(true)
		if where != nil {
			ds = ds.Where(where)
		}
		var err error
		readers, err = selectAll[reader.Reader](ctx, log, conn, ds)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Debug("readers loaded", logAttrCount, len(readers))
	return readers, nil
}

func readerRecord(r *reader.Reader) goqu.Record {
	return goqu.Record{
		"name":    r.Name,
		"address": r.Address,
		"email":   r.Email,
		"note":    nullableString(r.Note),
	}
}
