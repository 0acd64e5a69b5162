package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ponto/internal/platform/querier"
)

const employeeColumns = "id, name, cpf, position, role, target_shift_minutes, status, created_at, updated_at"

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(&emp.ID, &emp.Name, &emp.CPF, &emp.Position, &emp.Role, &emp.TargetShiftMinutes, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt)
	return emp, err
}

func (s *Store) ListEmployees(ctx context.Context, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    ORDER BY name, id
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) CountEmployees(ctx context.Context) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees").Scan(&total)
	return total, err
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = $1", employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) CreateEmployee(ctx context.Context, in EmployeeInput, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (name, cpf, position, role, target_shift_minutes, status, password_hash)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, in.Name, in.CPF, in.Position, in.Role, in.TargetShiftMinutes, in.Status, passwordHash).Scan(&id)
	if err != nil {
		return "", mapWriteError(err)
	}
	return id, nil
}

// UpdateEmployee keeps the stored password when passwordHash is empty.
func (s *Store) UpdateEmployee(ctx context.Context, employeeID string, in EmployeeInput, passwordHash string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET name = $2,
        cpf = $3,
        position = $4,
        role = $5,
        target_shift_minutes = $6,
        status = $7,
        password_hash = COALESCE(NULLIF($8, ''), password_hash),
        updated_at = now()
    WHERE id = $1
  `, employeeID, in.Name, in.CPF, in.Position, in.Role, in.TargetShiftMinutes, in.Status, passwordHash)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, employeeID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE id = $1", employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) ActiveEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+employeeColumns+" FROM employees WHERE status = 'active' ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrCPFTaken
	}
	return err
}
