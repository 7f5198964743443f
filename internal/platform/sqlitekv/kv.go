// Package sqlitekv implements the durable key-value slot backing the
// offline review queue on top of an embedded sqlite database. The file
// is process-local; cross-device reconciliation is explicitly out of
// scope.
package sqlitekv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/renshu-app/renshu/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS slots (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);
`

// KV is a sqlite-backed implementation of store.KV.
type KV struct {
	conn *sql.DB
}

// Ensure KV implements the store.KV interface
var _ store.KV = (*KV)(nil)

// Open creates the database file if needed and ensures the schema is up
// to date.
func Open(path string) (*KV, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open offline database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to offline database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply offline schema: %w", err)
	}

	return &KV{conn: conn}, nil
}

// Close closes the database connection.
func (kv *KV) Close() error {
	return kv.conn.Close()
}

// Get implements store.KV.
func (kv *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := kv.conn.QueryRowContext(ctx,
		`SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements store.KV. A full disk or exhausted database quota is
// reported as store.ErrQuotaExceeded.
func (kv *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := kv.conn.ExecContext(ctx, `
		INSERT INTO slots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		if isQuotaError(err) {
			return fmt.Errorf("%w: %v", store.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}

// Delete implements store.KV. Deleting an absent key is not an error.
func (kv *KV) Delete(ctx context.Context, key string) error {
	if _, err := kv.conn.ExecContext(ctx,
		`DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", key, err)
	}
	return nil
}

// isQuotaError recognizes sqlite's out-of-space conditions
// (SQLITE_FULL, disk I/O from a full filesystem).
func isQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "no space left on device")
}
