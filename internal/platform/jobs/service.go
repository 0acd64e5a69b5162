package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"ponto/internal/domain/reports"
	"ponto/internal/domain/timeclock"
	"ponto/internal/platform/querier"
)

const JobIncompleteScan = "incomplete_day_scan"

// IncompleteScanner finds employee-days that never reached an exit punch.
type IncompleteScanner interface {
	IncompleteDays(ctx context.Context, date string) ([]reports.IncompleteDay, error)
}

// Notifier is told about each incomplete day a scan finds.
type Notifier interface {
	IncompleteDay(ctx context.Context, day reports.IncompleteDay) error
}

type Service struct {
	DB       querier.Querier
	Scanner  IncompleteScanner
	Notifier Notifier
	Interval time.Duration
	Location *time.Location
	Now      func() time.Time
	queue    chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db querier.Querier, scanner IncompleteScanner, interval time.Duration, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		DB:       db,
		Scanner:  scanner,
		Interval: interval,
		Location: loc,
		Now:      time.Now,
		queue:    make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Interval > 0 {
		go s.scheduleIncompleteScan(ctx, s.Interval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// ScanIncomplete runs the incomplete-day scan for date synchronously and
// records it in job_runs.
func (s *Service) ScanIncomplete(ctx context.Context, date string) (any, error) {
	return s.RunNow(ctx, JobIncompleteScan, s.incompleteScan(date))
}

// PreviousDate is the calendar day before now in the service location.
func (s *Service) PreviousDate() string {
	return s.Now().In(s.Location).AddDate(0, 0, -1).Format(timeclock.DateLayout)
}

func (s *Service) incompleteScan(date string) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		days, err := s.Scanner.IncompleteDays(ctx, date)
		if err != nil {
			return map[string]any{"date": date}, err
		}
		employees := make([]string, 0, len(days))
		notified := 0
		for _, day := range days {
			employees = append(employees, day.EmployeeID)
			slog.Warn("incomplete punch day",
				"date", date,
				"employeeId", day.EmployeeID,
				"state", day.State,
				"lastPunch", day.LastPunch.Format(time.RFC3339),
			)
			if s.Notifier == nil {
				continue
			}
			if err := s.Notifier.IncompleteDay(ctx, day); err != nil {
				slog.Warn("incomplete day notification failed", "employeeId", day.EmployeeID, "err", err)
				continue
			}
			notified++
		}
		return map[string]any{
			"date":       date,
			"incomplete": len(days),
			"notified":   notified,
			"employees":  employees,
		}, nil
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
			slog.Warn("job run insert failed", "err", err)
		}
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleIncompleteScan(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobIncompleteScan, s.incompleteScan(s.PreviousDate()))
		}
	}
}
