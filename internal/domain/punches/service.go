package punches

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ponto/internal/domain/timeclock"
)

var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// Recorder receives punch outcomes; *metrics.Collector satisfies it.
type Recorder interface {
	PunchRecorded(kind string)
	PunchRejected(reason string)
}

type noopRecorder struct{}

func (noopRecorder) PunchRecorded(string) {}
func (noopRecorder) PunchRejected(string) {}

type Service struct {
	store   StoreAPI
	loc     *time.Location
	now     func() time.Time
	locks   *keyedMutex
	metrics Recorder
}

func NewService(store StoreAPI, loc *time.Location, now func() time.Time, metrics Recorder) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &Service{store: store, loc: loc, now: now, locks: newKeyedMutex(), metrics: metrics}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Now is the service clock in the configured location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// DayView is an employee's current day as shown on the dashboard.
type DayView struct {
	Date    string
	Punches []timeclock.Punch
	State   timeclock.State
	Allowed []timeclock.Kind
	Worked  time.Duration
	Skipped []timeclock.Skipped
}

// Record registers a punch of the requested kind at the current instant. The
// employee-day is locked across load, check and insert; a rejected request
// writes nothing and returns a *timeclock.TransitionError.
func (s *Service) Record(ctx context.Context, employeeID, rawKind string) (timeclock.Punch, error) {
	if strings.TrimSpace(employeeID) == "" {
		return timeclock.Punch{}, timeclock.ErrMissingEmployeeContext
	}
	kind, ok := timeclock.ParseKind(rawKind)
	if !ok {
		s.metrics.PunchRejected("unknown_kind")
		return timeclock.Punch{}, &timeclock.UnknownKindError{Value: rawKind}
	}

	now := s.Now().Truncate(time.Second)
	date := now.Format(timeclock.DateLayout)
	from, to := s.dayBounds(now)

	unlock := s.locks.Lock(employeeID + "/" + date)
	defer unlock()

	var recorded timeclock.Punch
	err := s.store.WithDayLock(ctx, employeeID, date, func(tx DayTx) error {
		records, err := tx.ListBetween(ctx, employeeID, from, to)
		if err != nil {
			return fmt.Errorf("load punches: %w", err)
		}
		today, skipped := timeclock.Ingest(records, s.loc, now)
		logSkipped(employeeID, skipped)

		if err := timeclock.Check(timeclock.StateOf(today), kind); err != nil {
			return err
		}
		id, err := tx.Insert(ctx, employeeID, kind, now)
		if err != nil {
			return fmt.Errorf("insert punch: %w", err)
		}
		recorded = timeclock.Punch{ID: id, EmployeeID: employeeID, Kind: kind, At: now}
		return nil
	})
	if err != nil {
		if errors.Is(err, timeclock.ErrIllegalTransition) {
			s.metrics.PunchRejected("illegal_transition")
		}
		return timeclock.Punch{}, err
	}

	s.metrics.PunchRecorded(kind.String())
	slog.Info("punch recorded", "employeeId", employeeID, "kind", kind.String(), "at", now.Format(time.RFC3339))
	return recorded, nil
}

// Today reports the employee's punches for the current date, most recent first,
// with the live worked duration up to now.
func (s *Service) Today(ctx context.Context, employeeID string) (DayView, error) {
	if strings.TrimSpace(employeeID) == "" {
		return DayView{}, timeclock.ErrMissingEmployeeContext
	}
	now := s.Now()
	from, to := s.dayBounds(now)
	records, err := s.store.ListBetween(ctx, employeeID, from, to)
	if err != nil {
		return DayView{}, err
	}
	today, skipped := timeclock.Ingest(records, s.loc, now)
	state := timeclock.StateOf(today)
	return DayView{
		Date:    now.Format(timeclock.DateLayout),
		Punches: timeclock.MostRecentFirst(today),
		State:   state,
		Allowed: timeclock.LegalNextKinds(state),
		Worked:  timeclock.WorkedDurationAt(today, now),
		Skipped: skipped,
	}, nil
}

// Range returns an employee's punches between two inclusive dates.
func (s *Service) Range(ctx context.Context, employeeID, start, end string) ([]timeclock.Punch, []timeclock.Skipped, error) {
	from, to, err := s.rangeBounds(start, end)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.store.ListBetween(ctx, employeeID, from, to)
	if err != nil {
		return nil, nil, err
	}
	punches, skipped := timeclock.Ingest(records, s.loc, s.Now())
	return timeclock.Chronological(punches), skipped, nil
}

// Day returns every employee's punches on one date.
func (s *Service) Day(ctx context.Context, date string) ([]timeclock.Punch, []timeclock.Skipped, error) {
	from, to, err := s.rangeBounds(date, date)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.store.ListAllBetween(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}
	punches, skipped := timeclock.Ingest(records, s.loc, s.Now())
	return timeclock.Chronological(punches), skipped, nil
}

func (s *Service) dayBounds(day time.Time) (time.Time, time.Time) {
	day = day.In(s.loc)
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	return from, from.AddDate(0, 0, 1)
}

func (s *Service) rangeBounds(start, end string) (time.Time, time.Time, error) {
	first, err := time.ParseInLocation(timeclock.DateLayout, strings.TrimSpace(start), s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, start)
	}
	last, err := time.ParseInLocation(timeclock.DateLayout, strings.TrimSpace(end), s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, end)
	}
	if last.Before(first) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end before start", ErrInvalidDate)
	}
	return first, last.AddDate(0, 0, 1), nil
}

func logSkipped(employeeID string, skipped []timeclock.Skipped) {
	for _, skip := range skipped {
		slog.Warn("punch record skipped", "employeeId", employeeID, "punchId", skip.Record.ID, "kind", skip.Record.Kind, "err", skip.Err)
	}
}
