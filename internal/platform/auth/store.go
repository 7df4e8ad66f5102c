package auth

import (
	"context"
	"database/sql"
)

type Account struct {
	ID           string
	PasswordHash string
	Role         string
	IsDisabled   bool
}

type AccountStore interface {
	GetByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id string) (int64, error)
	SetDisabled(ctx context.Context, id string, disabled bool) (int64, error)
}

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// GetByID returns (nil, nil) when the account does not exist.
func (s *Store) GetByID(ctx context.Context, id string) (*Account, error) {
	const q = `SELECT id, password_hash, role, is_disabled FROM accounts WHERE id = ?`
	var a Account
	err := s.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.PasswordHash, &a.Role, &a.IsDisabled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `INSERT INTO accounts (id, password_hash, role, is_disabled) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, a.ID, a.PasswordHash, a.Role, a.IsDisabled)
	return err
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

func (s *Store) SetDisabled(ctx context.Context, id string, disabled bool) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET is_disabled = ? WHERE id = ?`, disabled, id)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
