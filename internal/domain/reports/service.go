package reports

import (
	"context"
	"sort"
	"time"

	"ponto/internal/domain/core"
	"ponto/internal/domain/timeclock"
)

type EmployeeLookup interface {
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
	ActiveEmployees(ctx context.Context) ([]core.Employee, error)
}

type PunchSource interface {
	Range(ctx context.Context, employeeID, start, end string) ([]timeclock.Punch, []timeclock.Skipped, error)
	Day(ctx context.Context, date string) ([]timeclock.Punch, []timeclock.Skipped, error)
}

type JobRunStore interface {
	ListJobRuns(ctx context.Context, filter JobRunFilter, limit, offset int) ([]JobRun, error)
	CountJobRuns(ctx context.Context, filter JobRunFilter) (int, error)
}

type Service struct {
	employees EmployeeLookup
	punches   PunchSource
	jobs      JobRunStore
}

func NewService(employees EmployeeLookup, punches PunchSource, jobs JobRunStore) *Service {
	return &Service{employees: employees, punches: punches, jobs: jobs}
}

// Report is a period report enriched with data the engine leaves to callers.
type Report struct {
	timeclock.PeriodReport
	CPF            string
	BalanceTotal   time.Duration
	SkippedRecords int
}

func (r Report) BalanceTotalText() string {
	return timeclock.FormatBalance(r.BalanceTotal)
}

// BalanceTotal sums the per-day balances of the days that had punches.
func BalanceTotal(days []timeclock.DailyLedger) time.Duration {
	var total time.Duration
	for _, day := range days {
		total += time.Duration(timeclock.Minutes(day.Balance)) * time.Minute
	}
	return total
}

// NewReport builds a report from punches already loaded by the caller.
func NewReport(emp core.Employee, start, end string, punches []timeclock.Punch, skipped int) (Report, error) {
	period, err := timeclock.BuildReport(timeclock.ReportRequest{
		EmployeeID:         emp.ID,
		EmployeeName:       emp.Name,
		TargetShiftMinutes: emp.TargetShiftMinutes,
		Start:              start,
		End:                end,
	}, punches)
	if err != nil {
		return Report{}, err
	}
	return Report{
		PeriodReport:   period,
		CPF:            emp.CPF,
		BalanceTotal:   BalanceTotal(period.Days),
		SkippedRecords: skipped,
	}, nil
}

func (s *Service) EmployeeReport(ctx context.Context, employeeID, start, end string) (Report, error) {
	if employeeID == "" || start == "" || end == "" {
		return Report{}, timeclock.ErrMissingEmployeeContext
	}
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return Report{}, err
	}
	punches, skipped, err := s.punches.Range(ctx, employeeID, start, end)
	if err != nil {
		return Report{}, err
	}
	return NewReport(emp, start, end, punches, len(skipped))
}

// IncompleteDay is an employee-day with punches that did not end on an exit.
type IncompleteDay struct {
	EmployeeID   string            `json:"employeeId"`
	EmployeeName string            `json:"employeeName"`
	Date         string            `json:"date"`
	State        string            `json:"state"`
	LastPunch    time.Time         `json:"lastPunch"`
	Worked       string            `json:"worked"`
	Allowed      []timeclock.Kind  `json:"allowed"`
	Punches      []timeclock.Punch `json:"punches"`
}

func (s *Service) IncompleteDays(ctx context.Context, date string) ([]IncompleteDay, error) {
	punches, _, err := s.punches.Day(ctx, date)
	if err != nil {
		return nil, err
	}
	employees, err := s.employees.ActiveEmployees(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(employees))
	for _, emp := range employees {
		names[emp.ID] = emp.Name
	}
	return FindIncomplete(punches, names), nil
}

// FindIncomplete groups one date's punches per employee and keeps the days
// whose state is not LastWasExit. Output is sorted by employee name then id.
func FindIncomplete(punches []timeclock.Punch, names map[string]string) []IncompleteDay {
	byEmployee := map[string][]timeclock.Punch{}
	for _, punch := range punches {
		byEmployee[punch.EmployeeID] = append(byEmployee[punch.EmployeeID], punch)
	}

	out := make([]IncompleteDay, 0)
	for employeeID, day := range byEmployee {
		state := timeclock.StateOf(day)
		if state == timeclock.StateLastWasExit {
			continue
		}
		ordered := timeclock.Chronological(day)
		last := ordered[len(ordered)-1]
		name := names[employeeID]
		if name == "" {
			name = employeeID
		}
		out = append(out, IncompleteDay{
			EmployeeID:   employeeID,
			EmployeeName: name,
			Date:         last.Date(),
			State:        state.String(),
			LastPunch:    last.At,
			Worked:       timeclock.FormatDuration(timeclock.WorkedDuration(ordered)),
			Allowed:      timeclock.LegalNextKinds(state),
			Punches:      ordered,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeName == out[j].EmployeeName {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].EmployeeName < out[j].EmployeeName
	})
	return out
}

func (s *Service) JobRuns(ctx context.Context, filter JobRunFilter, limit, offset int) ([]JobRun, int, error) {
	total, err := s.jobs.CountJobRuns(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	runs, err := s.jobs.ListJobRuns(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
