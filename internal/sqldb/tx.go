package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rpggio/libraryloans/internal/domain"
)

const (
	logMsgOperationFailed   = "storage operation failed"
	logMsgRollbackFailed    = "failed to roll back transaction"
	logMsgReleaseFailed     = "failed to release connection"
	logMsgStatementExecuted = "statement executed"

	logAttrOp       = "op"
	logAttrOpID     = "op_id"
	logAttrEntity   = "entity"
	logAttrID       = "id"
	logAttrCount    = "count"
	logAttrQuery    = "query"
	logAttrDuration = "duration"
	logAttrError    = "error"
)

type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func ensureLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

func operationLogger(logger *slog.Logger, op string) *slog.Logger {
	return logger.With(logAttrOp, op, logAttrOpID, uuid.NewString())
}

// inTx runs fn in a transaction on a connection of its own. The transaction
// commits only when fn succeeds; the connection is released on every path.
// Domain errors from fn pass through, anything else becomes a ServiceFailure.
func (db *DB) inTx(ctx context.Context, log *slog.Logger, op string, fn func(tx *sqlx.Tx) error) error {
	conn, err := db.conns.Connx(ctx)
	if err != nil {
		return failure(log, op, fmt.Errorf("failed to acquire connection: %w", err))
	}
	defer release(log, conn)

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return failure(log, op, fmt.Errorf("failed to begin transaction: %w", err))
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Warn(logMsgRollbackFailed, logAttrError, err)
		}
	}()

	if err := fn(tx); err != nil {
		if isDomainError(err) {
			return err
		}
		return failure(log, op, err)
	}

	if err := tx.Commit(); err != nil {
		return failure(log, op, fmt.Errorf("failed to commit transaction: %w", err))
	}
	committed = true
	return nil
}

// withConn runs a read-only fn on a connection of its own.
func (db *DB) withConn(ctx context.Context, log *slog.Logger, op string, fn func(conn *sqlx.Conn) error) error {
	conn, err := db.conns.Connx(ctx)
	if err != nil {
		return failure(log, op, fmt.Errorf("failed to acquire connection: %w", err))
	}
	defer release(log, conn)

	if err := fn(conn); err != nil {
		if isDomainError(err) {
			return err
		}
		return failure(log, op, err)
	}
	return nil
}

func release(log *slog.Logger, conn *sqlx.Conn) {
	if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		log.Warn(logMsgReleaseFailed, logAttrError, err)
	}
}

func failure(log *slog.Logger, op string, err error) error {
	log.Error(logMsgOperationFailed, logAttrError, err)
	return domain.NewServiceFailure(op, err)
}

// exec runs a built statement and returns the number of affected rows.
func exec(ctx context.Context, log *slog.Logger, ex execer, b sqlBuilder) (int64, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build statement: %w", err)
	}

	start := time.Now()
	res, err := ex.ExecContext(ctx, query, args...)
	logStatement(log, query, start)
	if err != nil {
		return 0, classify(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// insert runs an insert for exactly one row and returns its generated id.
// Postgres reports the id through RETURNING, SQLite through LastInsertId.
func (db *DB) insert(ctx context.Context, log *slog.Logger, tx *sqlx.Tx, table string, row any) (int64, error) {
	ds := db.dialect.Insert(table).Rows(row).Prepared(true)

	if db.supportsReturning() {
		query, args, err := ds.Returning("id").ToSQL()
		if err != nil {
			return 0, fmt.Errorf("failed to build statement: %w", err)
		}
		start := time.Now()
		var id int64
		err = tx.QueryRowxContext(ctx, query, args...).Scan(&id)
		logStatement(log, query, start)
		if err != nil {
			return 0, classify(err)
		}
		return id, nil
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build statement: %w", err)
	}
	start := time.Now()
	res, err := tx.ExecContext(ctx, query, args...)
	logStatement(log, query, start)
	if err != nil {
		return 0, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n != 1 {
		return 0, fmt.Errorf("%w: insert into %s affected %d rows", domain.ErrIntegrityViolation, table, n)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read generated id: %w", err)
	}
	return id, nil
}

// selectAll runs a built query and scans every row into T.
func selectAll[T any](ctx context.Context, log *slog.Logger, conn *sqlx.Conn, b sqlBuilder) ([]T, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows := make([]T, 0)
	start := time.Now()
	err = conn.SelectContext(ctx, &rows, query, args...)
	logStatement(log, query, start)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	return rows, nil
}

// single picks the only row of a lookup by id. Zero rows is not an error;
// more than one means the store lost its key invariant.
func single[T any](rows []T, entity string, id int64) (*T, error) {
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return &rows[0], nil
	default:
		return nil, fmt.Errorf("%w: %d rows of %s share id %d", domain.ErrIntegrityViolation, len(rows), entity, id)
	}
}

// checkModified maps the affected row count of an update or delete.
func checkModified(n int64, entity string, id int64) error {
	switch {
	case n == 0:
		return domain.NewIllegalEntityError(entity, &id, "does not exist in the database")
	case n > 1:
		return fmt.Errorf("%w: %d rows of %s modified for id %d", domain.ErrIntegrityViolation, n, entity, id)
	default:
		return nil
	}
}

func logStatement(log *slog.Logger, query string, start time.Time) {
	log.Debug(logMsgStatementExecuted, logAttrQuery, query, logAttrDuration, time.Since(start))
}
