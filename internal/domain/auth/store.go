package auth

import (
	"context"
	"time"

	"ponto/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type Credentials struct {
	EmployeeID   string
	Role         string
	PasswordHash string
}

func (s *Store) FindActiveByCPF(ctx context.Context, cpf string) (Credentials, error) {
	var out Credentials
	err := s.DB.QueryRow(ctx, `
    SELECT id, role, password_hash
    FROM employees
    WHERE cpf = $1 AND status = 'active'
  `, cpf).Scan(&out.EmployeeID, &out.Role, &out.PasswordHash)
	return out, err
}

func (s *Store) CreateSession(ctx context.Context, sessionID, employeeID string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (id, employee_id, expires_at)
    VALUES ($1,$2,$3)
  `, sessionID, employeeID, expires)
	return err
}

func (s *Store) UpdateLastLogin(ctx context.Context, employeeID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE employees SET last_login = now() WHERE id = $1", employeeID)
	return err
}

func (s *Store) RevokeSession(ctx context.Context, sessionID, employeeID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = now() WHERE id = $1 AND employee_id = $2 AND revoked_at IS NULL", sessionID, employeeID)
	return err
}

func (s *Store) SessionActive(ctx context.Context, sessionID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM sessions
    WHERE id = $1 AND expires_at > now() AND revoked_at IS NULL
  `, sessionID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
