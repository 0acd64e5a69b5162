package punches

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ponto/internal/domain/timeclock"
	"ponto/internal/platform/querier"
)

type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Store struct {
	DB querier.Querier
	TX TxBeginner
}

// NewStore accepts a *pgxpool.Pool for both roles. tx may be nil, in which
// case WithDayLock runs without a database lock.
func NewStore(db querier.Querier, tx TxBeginner) *Store {
	return &Store{DB: db, TX: tx}
}

func (s *Store) ListBetween(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, kind, recorded_at
    FROM punches
    WHERE employee_id = $1 AND recorded_at >= $2 AND recorded_at < $3
    ORDER BY recorded_at, created_at
  `, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

func (s *Store) ListAllBetween(ctx context.Context, from, to time.Time) ([]timeclock.Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, kind, recorded_at
    FROM punches
    WHERE recorded_at >= $1 AND recorded_at < $2
    ORDER BY employee_id, recorded_at, created_at
  `, from, to)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]timeclock.Record, error) {
	defer rows.Close()
	var out []timeclock.Record
	for rows.Next() {
		var rec timeclock.Record
		var at time.Time
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Kind, &at); err != nil {
			return nil, err
		}
		rec.At = &at
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, employeeID string, kind timeclock.Kind, at time.Time) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO punches (employee_id, kind, recorded_at)
    VALUES ($1,$2,$3)
    RETURNING id
  `, employeeID, kind.String(), at).Scan(&id)
	return id, err
}

// WithDayLock holds a transaction-scoped advisory lock on the employee-day so
// that concurrent server instances serialize their read-check-insert.
func (s *Store) WithDayLock(ctx context.Context, employeeID, date string, fn func(DayTx) error) error {
	if s.TX == nil {
		return fn(s)
	}
	tx, err := s.TX.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin punch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", employeeID+"/"+date); err != nil {
		return fmt.Errorf("lock employee day: %w", err)
	}
	if err := fn(&Store{DB: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
