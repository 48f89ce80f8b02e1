package sqldb

import (
	"context"
	"fmt"
)

const (
	tableBook   = "book"
	tableReader = "reader"
	tableLoan   = "loan"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS book (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    author TEXT NOT NULL,
    published INTEGER NOT NULL,
    note TEXT
)`,
	`CREATE TABLE IF NOT EXISTS reader (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    address TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL,
    note TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_reader_name ON reader(name)`,
	`CREATE TABLE IF NOT EXISTS loan (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    reader_id INTEGER NOT NULL,
    book_id INTEGER NOT NULL,
    start_date TEXT,
    expected_end_date TEXT,
    real_end_time TEXT,
    FOREIGN KEY (reader_id) REFERENCES reader(id),
    FOREIGN KEY (book_id) REFERENCES book(id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_loan_reader ON loan(reader_id)`,
	`CREATE INDEX IF NOT EXISTS idx_loan_book ON loan(book_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS book (
    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    title TEXT NOT NULL,
    author TEXT NOT NULL,
    published INTEGER NOT NULL,
    note TEXT
)`,
	`CREATE TABLE IF NOT EXISTS reader (
    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name TEXT NOT NULL,
    address TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL,
    note TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_reader_name ON reader(name)`,
	`CREATE TABLE IF NOT EXISTS loan (
    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    reader_id BIGINT NOT NULL REFERENCES reader(id),
    book_id BIGINT NOT NULL REFERENCES book(id),
    start_date DATE,
    expected_end_date DATE,
    real_end_time TIMESTAMPTZ
)`,
	`CREATE INDEX IF NOT EXISTS idx_loan_reader ON loan(reader_id)`,
	`CREATE INDEX IF NOT EXISTS idx_loan_book ON loan(book_id)`,
}

var dropSchema = []string{
	`DROP TABLE IF EXISTS loan`,
	`DROP TABLE IF EXISTS reader`,
	`DROP TABLE IF EXISTS book`,
}

// CreateTables provisions the book, reader and loan tables if they are missing.
func (db *DB) CreateTables(ctx context.Context) error {
	statements := sqliteSchema
	if db.dialectName() == dialectPostgres {
		statements = postgresSchema
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

// DropTables removes the tables created by CreateTables.
func (db *DB) DropTables(ctx context.Context) error {
	for _, stmt := range dropSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
	}
	return nil
}

func (db *DB) dialectName() string {
	return dialectByDriver[db.driver]
}
