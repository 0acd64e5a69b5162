package timeclock

import (
	"strings"
	"time"
)

// DefaultTargetShiftMinutes is the daily target used when an employee has none configured.
const DefaultTargetShiftMinutes = 480

// WorkedDuration sums the closed Entry→Break/Exit intervals of one day. A
// trailing open entry contributes nothing; closed days need their final Exit.
func WorkedDuration(punches []Punch) time.Duration {
	return worked(punches, time.Time{}, false)
}

// WorkedDurationAt is the live variant: a trailing open entry is extended to now.
func WorkedDurationAt(punches []Punch, now time.Time) time.Duration {
	return worked(punches, now, true)
}

func worked(punches []Punch, now time.Time, live bool) time.Duration {
	var total time.Duration
	var openEntry *time.Time

	for _, punch := range Chronological(punches) {
		switch punch.Kind {
		case KindEntry:
			at := punch.At
			openEntry = &at
		case KindBreak, KindExit:
			if openEntry == nil {
				continue
			}
			total += punch.At.Sub(*openEntry)
			openEntry = nil
		}
	}

	if live && openEntry != nil {
		if extension := now.Sub(*openEntry); extension > 0 {
			total += extension
		}
	}

	if total < 0 {
		return 0
	}
	return total.Truncate(time.Minute)
}

// DailyBalance is worked minus the target shift.
func DailyBalance(worked time.Duration, targetShiftMinutes int) time.Duration {
	return worked - time.Duration(targetShiftMinutes)*time.Minute
}

// DailyLedger is the derived view of one employee-day.
type DailyLedger struct {
	Date    string
	Punches []Punch
	Worked  time.Duration
	Balance time.Duration
}

func (l DailyLedger) WorkedText() string {
	return FormatDuration(l.Worked)
}

func (l DailyLedger) BalanceText() string {
	return FormatBalance(l.Balance)
}

// Summary lists the day's punches on one line, e.g. "E 08:00 | P 12:00 | S 17:00".
func (l DailyLedger) Summary() string {
	parts := make([]string, 0, len(l.Punches))
	for _, punch := range l.Punches {
		parts = append(parts, punch.Kind.Code()+" "+punch.Clock())
	}
	return strings.Join(parts, " | ")
}

// GroupByDay filters punches to one employee and the inclusive [start, end]
// range and buckets them per calendar date, oldest first. Dates must already
// be canonical YYYY-MM-DD; comparison is lexicographic. Dates without punches
// are omitted.
func GroupByDay(punches []Punch, employeeID, start, end string) []DailyLedger {
	filtered := make([]Punch, 0, len(punches))
	for _, punch := range punches {
		if punch.EmployeeID != employeeID {
			continue
		}
		date := punch.Date()
		if date < start || date > end {
			continue
		}
		filtered = append(filtered, punch)
	}

	var ledgers []DailyLedger
	index := map[string]int{}
	for _, punch := range Chronological(filtered) {
		date := punch.Date()
		pos, ok := index[date]
		if !ok {
			pos = len(ledgers)
			index[date] = pos
			ledgers = append(ledgers, DailyLedger{Date: date})
		}
		ledgers[pos].Punches = append(ledgers[pos].Punches, punch)
	}

	for i := range ledgers {
		ledgers[i].Worked = WorkedDuration(ledgers[i].Punches)
	}
	return ledgers
}

// PeriodTotal sums the worked minutes of each ledger.
func PeriodTotal(ledgers []DailyLedger) time.Duration {
	var total time.Duration
	for _, ledger := range ledgers {
		total += time.Duration(Minutes(ledger.Worked)) * time.Minute
	}
	return total
}

// ReportRequest carries the employee context a period report needs.
type ReportRequest struct {
	EmployeeID         string
	EmployeeName       string
	TargetShiftMinutes int
	Start              string
	End                string
}

func (r ReportRequest) Validate() error {
	if strings.TrimSpace(r.EmployeeID) == "" || strings.TrimSpace(r.Start) == "" || strings.TrimSpace(r.End) == "" {
		return ErrMissingEmployeeContext
	}
	return nil
}

// PeriodReport is built per request and never stored.
type PeriodReport struct {
	EmployeeID         string
	EmployeeName       string
	Start              string
	End                string
	TargetShiftMinutes int
	Days               []DailyLedger
	Total              time.Duration
}

func (r PeriodReport) TotalText() string {
	return FormatDuration(r.Total)
}

// BuildReport groups punches for the requested employee and range and fills in
// each day's balance against the target shift.
func BuildReport(req ReportRequest, punches []Punch) (PeriodReport, error) {
	if err := req.Validate(); err != nil {
		return PeriodReport{}, err
	}
	target := req.TargetShiftMinutes
	if target <= 0 {
		target = DefaultTargetShiftMinutes
	}

	days := GroupByDay(punches, req.EmployeeID, req.Start, req.End)
	for i := range days {
		days[i].Balance = DailyBalance(days[i].Worked, target)
	}

	return PeriodReport{
		EmployeeID:         req.EmployeeID,
		EmployeeName:       req.EmployeeName,
		Start:              req.Start,
		End:                req.End,
		TargetShiftMinutes: target,
		Days:               days,
		Total:              PeriodTotal(days),
	}, nil
}
