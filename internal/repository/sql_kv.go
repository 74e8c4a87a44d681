package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// SQLKV persists keys in the session_kv table (see database.EnsureSchema).
// Expired rows are ignored on read and removed lazily.
type SQLKV struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewSQLKV(db *sql.DB) *SQLKV { return &SQLKV{DB: db, Now: time.Now} }

func (r *SQLKV) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

func (r *SQLKV) Get(ctx context.Context, key string) (string, error) {
	var (
		value     string
		expiresAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT v, expires_at FROM session_kv WHERE k=? LIMIT 1", key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", unavailable("sql get", err)
	}
	if expiresAt.Valid && !r.now().Before(expiresAt.Time) {
		_, _ = r.DB.ExecContext(ctx, "DELETE FROM session_kv WHERE k=?", key)
		return "", ErrNotFound
	}
	return value, nil
}

func (r *SQLKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	var exp sql.NullTime
	if ttl > 0 {
		exp = sql.NullTime{Time: r.now().Add(ttl), Valid: true}
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO session_kv (k, v, expires_at) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE v=VALUES(v), expires_at=VALUES(expires_at)`,
		key, value, exp)
	if err != nil {
		return unavailable("sql set", err)
	}
	return nil
}

func (r *SQLKV) SetNX(ctx context.Context, key, value string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO session_kv (k, v, expires_at) VALUES (?,?,NULL)", key, value)
	if err != nil {
		return false, unavailable("sql setnx", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("sql setnx", err)
	}
	return n == 1, nil
}

func (r *SQLKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := "DELETE FROM session_kv WHERE k IN (?" + strings.Repeat(",?", len(keys)-1) + ")"
	if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
		return unavailable("sql delete", err)
	}
	return nil
}
