package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist. DDL differs slightly
// per driver (auto-increment spelling, column types), so each driver
// carries its own statement set.
func Migrate(ctx context.Context, conn *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case "", "mysql":
		stmts = mysqlSchema
	case "sqlite3":
		stmts = sqliteSchema
	default:
		return fmt.Errorf("unknown database driver: %s", driver)
	}

	for _, q := range stmts {
		if _, err := conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		isbn         VARCHAR(32) PRIMARY KEY,
		title        VARCHAR(255) NOT NULL,
		author       VARCHAR(255) NOT NULL,
		publisher    VARCHAR(255),
		publish_date DATE,
		page_count   INT NOT NULL DEFAULT 0,
		genre        VARCHAR(100),
		language     VARCHAR(50),
		rating       DOUBLE NOT NULL DEFAULT 0,
		rating_count INT NOT NULL DEFAULT 0,
		description  TEXT,
		search_text  TEXT,
		is_borrowed  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		id            VARCHAR(32) PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		category      VARCHAR(16) NOT NULL,
		affiliation   VARCHAR(255),
		enrolled_on   DATE,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS borrow_records (
		record_id    BIGINT AUTO_INCREMENT PRIMARY KEY,
		member_id    VARCHAR(32) NOT NULL,
		book_isbn    VARCHAR(32) NOT NULL,
		borrow_date  DATETIME NOT NULL,
		due_date     DATETIME NOT NULL,
		return_date  DATETIME NULL,
		is_returned  BOOLEAN NOT NULL DEFAULT FALSE,
		fine_amount  DOUBLE NOT NULL DEFAULT 0,
		notes        TEXT,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_borrow_member (member_id, is_returned),
		KEY idx_borrow_book (book_isbn, is_returned),
		KEY idx_borrow_due (is_returned, due_date)
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id            VARCHAR(64) PRIMARY KEY,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(32) NOT NULL DEFAULT 'librarian',
		is_disabled   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		isbn         TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		author       TEXT NOT NULL,
		publisher    TEXT,
		publish_date TIMESTAMP,
		page_count   INTEGER NOT NULL DEFAULT 0,
		genre        TEXT,
		language     TEXT,
		rating       REAL NOT NULL DEFAULT 0,
		rating_count INTEGER NOT NULL DEFAULT 0,
		description  TEXT,
		search_text  TEXT,
		is_borrowed  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		category      TEXT NOT NULL,
		affiliation   TEXT,
		enrolled_on   TIMESTAMP,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS borrow_records (
		record_id    INTEGER PRIMARY KEY AUTOINCREMENT,
		member_id    TEXT NOT NULL,
		book_isbn    TEXT NOT NULL,
		borrow_date  TIMESTAMP NOT NULL,
		due_date     TIMESTAMP NOT NULL,
		return_date  TIMESTAMP,
		is_returned  BOOLEAN NOT NULL DEFAULT FALSE,
		fine_amount  REAL NOT NULL DEFAULT 0,
		notes        TEXT,
		created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_borrow_member ON borrow_records (member_id, is_returned)`,
	`CREATE INDEX IF NOT EXISTS idx_borrow_book ON borrow_records (book_isbn, is_returned)`,
	`CREATE INDEX IF NOT EXISTS idx_borrow_due ON borrow_records (is_returned, due_date)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'librarian',
		is_disabled   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}
