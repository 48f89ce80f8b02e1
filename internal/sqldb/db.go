package sqldb

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	_ "github.com/jackc/pgx/v5/stdlib"                  // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverPGX      = "pgx"
)

const (
	dialectSQLite   = "sqlite3"
	dialectPostgres = "postgres"
)

var dialectByDriver = map[string]string{
	DriverSQLite:   dialectSQLite,
	DriverPostgres: dialectPostgres,
	DriverPGX:      dialectPostgres,
}

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// ConnProvider hands out a dedicated connection for one unit of work.
// *sqlx.DB satisfies it.
type ConnProvider interface {
	Connx(ctx context.Context) (*sqlx.Conn, error)
}

// DB wraps a sqlx database handle together with the SQL dialect used to
// build statements and the provider managers acquire connections from.
type DB struct {
	*sqlx.DB
	driver  string
	dialect goqu.DialectWrapper
	conns   ConnProvider
}

// Open opens a database for one of the supported drivers and verifies the
// connection. SQLite databases get foreign key enforcement on every
// connection; in-memory SQLite databases are limited to one connection so
// all callers see the same data.
func Open(driver, dsn string) (*DB, error) {
	if _, ok := dialectByDriver[driver]; !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if driver == DriverSQLite {
		dsn = withForeignKeys(dsn)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite && isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return New(db)
}

// New wraps an already opened sqlx handle. The dialect follows the driver name.
func New(db *sqlx.DB) (*DB, error) {
	if db == nil {
		return nil, fmt.Errorf("nil database handle")
	}
	name, ok := dialectByDriver[db.DriverName()]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", db.DriverName())
	}
	return &DB{
		DB:      db,
		driver:  db.DriverName(),
		dialect: goqu.Dialect(name),
		conns:   db,
	}, nil
}

// Driver returns the database/sql driver name.
func (db *DB) Driver() string {
	return db.driver
}

// WithConnProvider returns a copy of db whose managers acquire connections
// from p. Statements are still built for db's dialect.
func (db *DB) WithConnProvider(p ConnProvider) *DB {
	clone := *db
	clone.conns = p
	return &clone
}

func (db *DB) supportsReturning() bool {
	return db.driver != DriverSQLite
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
