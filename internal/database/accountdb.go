package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the database file created inside the data directory.
const FileName = "leda.db"

var (
	// ErrAccountNotFound is returned when no blob is stored for an identity.
	ErrAccountNotFound = errors.New("account not found")

	// ErrEmptyIdentity is returned when an account identity is blank.
	ErrEmptyIdentity = errors.New("account identity must not be empty")

	// ErrEmptyBlob is returned when saving an account without a credential blob.
	ErrEmptyBlob = errors.New("credential blob must not be empty")

	// ErrDatabaseNotFound is returned by Open when the file is missing and
	// creation was not requested.
	ErrDatabaseNotFound = errors.New("database not found")
)

// AccountDB stores encrypted credential blobs keyed by account identity.
type AccountDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AccountDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AccountDB inside dbDir.
func Open(dbDir string, opts Options) (*AccountDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AccountDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if opts.CreateIfNotExists {
		// The file holds credential material, keep it owner-only.
		if err := os.Chmod(dbPath, 0o600); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to restrict database permissions: %w", err)
		}
	}

	return adb, nil
}

// Path returns the database file path.
func (adb *AccountDB) Path() string {
	return adb.dbPath
}

// Close closes the database connection.
func (adb *AccountDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AccountDB) createTables() error {
	schema := `
	-- One encrypted credential blob per account identity
	CREATE TABLE IF NOT EXISTS accounts (
		identity TEXT PRIMARY KEY,
		blob TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// Account is a stored credential blob.
type Account struct {
	Identity  string
	Blob      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Save inserts or replaces the blob for identity.
// The creation time of an existing account is preserved.
func (adb *AccountDB) Save(ctx context.Context, identity, blob string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return ErrEmptyIdentity
	}
	if blob == "" {
		return ErrEmptyBlob
	}

	query := `
	INSERT INTO accounts (identity, blob)
	VALUES (?, ?)
	ON CONFLICT(identity) DO UPDATE SET
		blob = excluded.blob,
		updated_at = CURRENT_TIMESTAMP
	`

	if _, err := adb.db.ExecContext(ctx, query, identity, blob); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// Get returns the stored account for identity.
func (adb *AccountDB) Get(ctx context.Context, identity string) (*Account, error) {
	query := `
	SELECT identity, blob, created_at, updated_at
	FROM accounts
	WHERE identity = ?
	`

	account, err := scanAccount(adb.db.QueryRowContext(ctx, query, strings.TrimSpace(identity)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, identity)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// List returns every stored account ordered by identity.
func (adb *AccountDB) List(ctx context.Context) ([]Account, error) {
	query := `
	SELECT identity, blob, created_at, updated_at
	FROM accounts
	ORDER BY identity
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// Delete removes the account for identity.
func (adb *AccountDB) Delete(ctx context.Context, identity string) error {
	result, err := adb.db.ExecContext(ctx, "DELETE FROM accounts WHERE identity = ?", strings.TrimSpace(identity))
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, identity)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*Account, error) {
	var account Account
	var created, updated string

	if err := s.Scan(&account.Identity, &account.Blob, &created, &updated); err != nil {
		return nil, err
	}

	account.CreatedAt = parseTimestamp(created)
	account.UpdatedAt = parseTimestamp(updated)
	return &account, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// It returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
