package sqldb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/libraryloans/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "sqlite foreign key",
			err:  errors.New("constraint failed: FOREIGN KEY constraint failed (787)"),
			want: domain.ErrForeignKeyViolation,
		},
		{
			name: "sqlite unique",
			err:  errors.New("constraint failed: UNIQUE constraint failed: book.id (1555)"),
			want: domain.ErrUniqueViolation,
		},
		{
			name: "pgx foreign key",
			err:  fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23503"}),
			want: domain.ErrForeignKeyViolation,
		},
		{
			name: "lib/pq unique",
			err:  &pq.Error{Code: "23505"},
			want: domain.ErrUniqueViolation,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			require.ErrorIs(t, got, tc.want)
			require.ErrorIs(t, got, tc.err)
		})
	}

	plain := errors.New("disk I/O error")
	require.Equal(t, plain, classify(plain))
	require.NoError(t, classify(nil))

	// Postgres codes win over message text.
	require.NotErrorIs(t, classify(&pgconn.PgError{Code: "42P01", Message: "FOREIGN KEY constraint failed"}), domain.ErrForeignKeyViolation)
}

func TestSingle(t *testing.T) {
	got, err := single([]int{}, "book", 1)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = single([]int{7}, "book", 1)
	require.NoError(t, err)
	require.Equal(t, 7, *got)

	_, err = single([]int{7, 8}, "book", 1)
	require.ErrorIs(t, err, domain.ErrIntegrityViolation)
}

func TestCheckModified(t *testing.T) {
	require.NoError(t, checkModified(1, "book", 3))
	require.ErrorIs(t, checkModified(0, "book", 3), domain.ErrIllegalEntity)
	require.ErrorIs(t, checkModified(2, "book", 3), domain.ErrIntegrityViolation)
}
