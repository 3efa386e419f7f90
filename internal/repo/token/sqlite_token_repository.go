package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yks-app/yks-go/internal/infra/logging"
)

// The token lives in a one-row table under a fixed key, mirroring the
// single named key in the device key-value store it replaces.
const tokenKey = "token"

// SQLiteTokenRepositoryConfig holds configuration for the SQLite token repository.
type SQLiteTokenRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/yks.db"`
}

// SQLiteTokenRepository implements Repository using SQLite as the storage backend.
type SQLiteTokenRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteTokenRepository)(nil)

// SQLiteTokenRepositoryFactory creates a factory function that returns a new
// SQLiteTokenRepository. The factory function implements the RepositoryFactory type.
func SQLiteTokenRepositoryFactory(cfg SQLiteTokenRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteTokenRepository(cfg)
	}
}

// NewSQLiteTokenRepository creates a new SQLiteTokenRepository with the given
// configuration. It initializes the database connection and creates the schema
// if needed. Returns an error if database connection or initialization fails.
func NewSQLiteTokenRepository(cfg SQLiteTokenRepositoryConfig) (*SQLiteTokenRepository, error) {
	log := logging.GetLogger("repo.token.sqlite_token_repository").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("make db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteTokenRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS credentials (
			key        TEXT    PRIMARY KEY,
			value      TEXT    NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Get implements Repository.Get using SQLite.
func (r *SQLiteTokenRepository) Get(ctx context.Context) (string, bool, error) {
	var value string

	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM credentials WHERE key = ?",
		tokenKey,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("query token: %w", err)
	}

	return value, true, nil
}

// Put implements Repository.Put using SQLite.
func (r *SQLiteTokenRepository) Put(ctx context.Context, token string) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, tokenKey, token, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}

	return nil
}

// Delete implements Repository.Delete using SQLite.
func (r *SQLiteTokenRepository) Delete(ctx context.Context) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM credentials WHERE key = ?",
		tokenKey,
	); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}

	return nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteTokenRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
