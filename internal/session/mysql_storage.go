package session

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// MySQLStorage keeps session records in the client_sessions table.
// Expired rows are ignored on read and removed by Purge.
type MySQLStorage struct{ DB *sql.DB }

// NewMySQLStorage wraps an open connection pool.
func NewMySQLStorage(db *sql.DB) *MySQLStorage { return &MySQLStorage{DB: db} }

const createClientSessions = `CREATE TABLE IF NOT EXISTS client_sessions (
	scope_hash CHAR(64)    NOT NULL,
	name       VARCHAR(32) NOT NULL,
	value      TEXT        NOT NULL,
	expires_at DATETIME    NULL,
	updated_at DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	PRIMARY KEY (scope_hash, name),
	KEY idx_client_sessions_expires (expires_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the table when missing.
func (m *MySQLStorage) EnsureSchema(ctx context.Context) error {
	_, err := m.DB.ExecContext(ctx, createClientSessions)
	return err
}

func (m *MySQLStorage) Get(ctx context.Context, scope, name string) (string, bool, error) {
	var (
		value   string
		expires sql.NullTime
	)
	err := m.DB.QueryRowContext(ctx,
		"SELECT value, expires_at FROM client_sessions WHERE scope_hash=? AND name=? LIMIT 1",
		scopeKey(scope), name).Scan(&value, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if expires.Valid && !time.Now().UTC().Before(expires.Time) {
		return "", false, nil
	}
	return value, true, nil
}

func (m *MySQLStorage) Set(ctx context.Context, scope, name, value string, ttl time.Duration) error {
	var expires sql.NullTime
	if ttl > 0 {
		expires = sql.NullTime{Time: time.Now().UTC().Add(ttl), Valid: true}
	}
	_, err := m.DB.ExecContext(ctx,
		`INSERT INTO client_sessions (scope_hash, name, value, expires_at) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE value=VALUES(value), expires_at=VALUES(expires_at)`,
		scopeKey(scope), name, value, expires)
	return err
}

func (m *MySQLStorage) Delete(ctx context.Context, scope string, names ...string) error {
	for _, n := range names {
		if _, err := m.DB.ExecContext(ctx,
			"DELETE FROM client_sessions WHERE scope_hash=? AND name=?",
			scopeKey(scope), n); err != nil {
			return err
		}
	}
	return nil
}

func (m *MySQLStorage) Ping(ctx context.Context) error { return m.DB.PingContext(ctx) }

// Purge deletes expired rows and returns how many were removed.
func (m *MySQLStorage) Purge(ctx context.Context) (int64, error) {
	res, err := m.DB.ExecContext(ctx,
		"DELETE FROM client_sessions WHERE expires_at IS NOT NULL AND expires_at <= UTC_TIMESTAMP()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
