package punches

import (
	"context"
	"time"

	"ponto/internal/domain/timeclock"
)

// Reader loads raw punch rows. Bounds are [from, to).
type Reader interface {
	ListBetween(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.Record, error)
	ListAllBetween(ctx context.Context, from, to time.Time) ([]timeclock.Record, error)
}

// DayTx is the view of the store available while an employee-day is locked.
type DayTx interface {
	ListBetween(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.Record, error)
	Insert(ctx context.Context, employeeID string, kind timeclock.Kind, at time.Time) (string, error)
}

type StoreAPI interface {
	Reader
	WithDayLock(ctx context.Context, employeeID, date string, fn func(DayTx) error) error
}
