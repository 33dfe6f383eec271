package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// StoredSession is the token persisted by login for later commands.
type StoredSession struct {
	Token      string
	EmployeeID string
	CreatedAt  string
}

func (r Repo) SaveSession(ctx context.Context, s StoredSession) error {
	if strings.TrimSpace(s.Token) == "" {
		return errors.New("token required")
	}
	if s.EmployeeID == "" {
		return errors.New("employee_id required")
	}
	if s.CreatedAt == "" {
		s.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := r.DB.ExecContext(ctx, `INSERT INTO session(id,token,employee_id,created_at) VALUES (1,?,?,?)
		ON CONFLICT(id) DO UPDATE SET token=excluded.token, employee_id=excluded.employee_id, created_at=excluded.created_at`,
		s.Token, s.EmployeeID, s.CreatedAt)
	return err
}

func (r Repo) LoadSession(ctx context.Context) (StoredSession, error) {
	var s StoredSession
	err := r.DB.QueryRowContext(ctx, `SELECT token, employee_id, created_at FROM session WHERE id=1`).Scan(&s.Token, &s.EmployeeID, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return StoredSession{}, ErrNotFound
	}
	return s, err
}

func (r Repo) ClearSession(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM session`)
	return err
}

func (r Repo) GetSetting(ctx context.Context, key string) (string, error) {
	var v string
	err := r.DB.QueryRowContext(ctx, `SELECT value FROM settings WHERE key=?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return v, err
}

func (r Repo) PutSetting(ctx context.Context, key, value string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO settings(key,value) VALUES (?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}
