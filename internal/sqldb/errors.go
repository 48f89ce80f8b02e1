package sqldb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/rpggio/libraryloans/internal/domain"
)

const (
	pgCodeForeignKeyViolation = "23503"
	pgCodeUniqueViolation     = "23505"
)

// classify tags constraint failures from any supported driver with the
// matching domain sentinel. Other errors are returned unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %w", domain.ErrForeignKeyViolation, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %w", domain.ErrUniqueViolation, err)
	default:
		return err
	}
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := postgresCode(err); ok {
		return code == pgCodeForeignKeyViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := postgresCode(err); ok {
		return code == pgCodeUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// postgresCode extracts the SQLSTATE from pgx and lib/pq errors.
func postgresCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	return "", false
}

// isDomainError reports errors that already belong to the caller-facing
// taxonomy and must not be wrapped again.
func isDomainError(err error) bool {
	return domain.IsValidation(err) || domain.IsIllegalEntity(err) || domain.IsServiceFailure(err)
}
