// Package credstore is a durable banksdk.CredentialStore backed by an
// encrypted SQLite file.
package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/cryptox"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps each value sealed with AES-GCM. The database file is
// created owner read/write only.
type SQLiteStore struct {
	db     *sql.DB
	sealer *cryptox.Sealer
	path   string
}

var _ banksdk.CredentialStore = (*SQLiteStore)(nil)

// Open opens (or creates) the store at path and applies migrations.
func Open(path string, sealer *cryptox.Sealer) (*SQLiteStore, error) {
	if sealer == nil {
		return nil, errors.New("credstore: sealer is required")
	}
	if err := prepareFile(path); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("credstore: open: %w", err)
	}

	s := &SQLiteStore{db: db, sealer: sealer, path: path}
	if err := s.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("credstore: migrate: %w", err)
	}
	return s, nil
}

// prepareFile makes sure the file exists with 0600 before SQLite touches it.
func prepareFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("credstore: create dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("credstore: create file: %w", err)
	}
	_ = f.Close()
	return os.Chmod(path, 0o600)
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Path is the database file location.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var sealed string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key = ?`, key).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("credstore: get %s: %w", key, err)
	}

	value, err := s.sealer.OpenString(sealed)
	if err != nil {
		return "", fmt.Errorf("credstore: unseal %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	return s.SetAll(ctx, map[string]string{key: value})
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return s.DeleteAll(ctx, key)
}

// SetAll writes every value in one transaction.
func (s *SQLiteStore) SetAll(ctx context.Context, values map[string]string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for k, v := range values {
			sealed, err := s.sealer.SealString(v)
			if err != nil {
				return fmt.Errorf("credstore: seal %s: %w", k, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO credentials (key, value, updated_at) VALUES (?, ?, ?)`,
				k, sealed, now,
			); err != nil {
				return fmt.Errorf("credstore: set %s: %w", k, err)
			}
		}
		return nil
	})
}

// DeleteAll removes every key in one transaction.
func (s *SQLiteStore) DeleteAll(ctx context.Context, keys ...string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE key = ?`, k); err != nil {
				return fmt.Errorf("credstore: delete %s: %w", k, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
