package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ponto/internal/domain/core"
	"ponto/internal/domain/timeclock"
)

var brt = time.FixedZone("BRT", -3*60*60)

func at(date, clock string) time.Time {
	parsed, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, brt)
	if err != nil {
		panic(err)
	}
	return parsed
}

func punch(emp, date, clock string, kind timeclock.Kind) timeclock.Punch {
	return timeclock.Punch{ID: emp + date + clock, EmployeeID: emp, Kind: kind, At: at(date, clock)}
}

type fakeEmployees map[string]core.Employee

func (f fakeEmployees) GetEmployee(ctx context.Context, employeeID string) (core.Employee, error) {
	emp, ok := f[employeeID]
	if !ok {
		return core.Employee{}, core.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f fakeEmployees) ActiveEmployees(ctx context.Context) ([]core.Employee, error) {
	var out []core.Employee
	for _, emp := range f {
		out = append(out, emp)
	}
	return out, nil
}

type fakePunches struct {
	punches []timeclock.Punch
	skipped []timeclock.Skipped
}

func (f fakePunches) Range(ctx context.Context, employeeID, start, end string) ([]timeclock.Punch, []timeclock.Skipped, error) {
	var out []timeclock.Punch
	for _, p := range f.punches {
		if p.EmployeeID == employeeID && p.Date() >= start && p.Date() <= end {
			out = append(out, p)
		}
	}
	return out, f.skipped, nil
}

func (f fakePunches) Day(ctx context.Context, date string) ([]timeclock.Punch, []timeclock.Skipped, error) {
	var out []timeclock.Punch
	for _, p := range f.punches {
		if p.Date() == date {
			out = append(out, p)
		}
	}
	return out, nil, nil
}

func sampleService() *Service {
	employees := fakeEmployees{
		"ana":   {ID: "ana", Name: "Ana Lima", CPF: "52998224725", TargetShiftMinutes: 480},
		"bruno": {ID: "bruno", Name: "Bruno Reis", CPF: "39053344705", TargetShiftMinutes: 360},
	}
	punches := fakePunches{
		punches: []timeclock.Punch{
			punch("ana", "2024-03-01", "08:00", timeclock.KindEntry),
			punch("ana", "2024-03-01", "12:00", timeclock.KindBreak),
			punch("ana", "2024-03-01", "13:00", timeclock.KindEntry),
			punch("ana", "2024-03-01", "17:30", timeclock.KindExit),
			punch("ana", "2024-03-02", "08:00", timeclock.KindEntry),
			punch("ana", "2024-03-02", "15:00", timeclock.KindExit),
			punch("bruno", "2024-03-01", "09:00", timeclock.KindEntry),
			punch("bruno", "2024-03-01", "12:00", timeclock.KindBreak),
		},
		skipped: []timeclock.Skipped{{Record: timeclock.Record{ID: "bad"}, Err: timeclock.ErrUnparseableTimestamp}},
	}
	return NewService(employees, punches, nil)
}

func TestEmployeeReport(t *testing.T) {
	report, err := sampleService().EmployeeReport(context.Background(), "ana", "2024-03-01", "2024-03-31")
	require.NoError(t, err)

	require.Len(t, report.Days, 2)
	assert.Equal(t, "Ana Lima", report.EmployeeName)
	assert.Equal(t, 8*time.Hour+30*time.Minute, report.Days[0].Worked)
	assert.Equal(t, "+00:30", report.Days[0].BalanceText())
	assert.Equal(t, "-01:00", report.Days[1].BalanceText())
	assert.Equal(t, "15:30", report.TotalText())
	assert.Equal(t, "-00:30", report.BalanceTotalText())
	assert.Equal(t, 1, report.SkippedRecords)

	view := report.View()
	assert.Equal(t, int64(930), view.TotalMinutes)
	assert.Equal(t, int64(-30), view.BalanceTotalMinutes)
	assert.Equal(t, "E 08:00 | P 12:00 | E 13:00 | S 17:30", view.Days[0].Summary)
}

func TestEmployeeReportNeedsContext(t *testing.T) {
	_, err := sampleService().EmployeeReport(context.Background(), "", "2024-03-01", "2024-03-31")
	assert.ErrorIs(t, err, timeclock.ErrMissingEmployeeContext)

	_, err = sampleService().EmployeeReport(context.Background(), "ana", "2024-03-01", "")
	assert.ErrorIs(t, err, timeclock.ErrMissingEmployeeContext)

	_, err = sampleService().EmployeeReport(context.Background(), "nobody", "2024-03-01", "2024-03-02")
	assert.ErrorIs(t, err, core.ErrEmployeeNotFound)
}

func TestIncompleteDays(t *testing.T) {
	days, err := sampleService().IncompleteDays(context.Background(), "2024-03-01")
	require.NoError(t, err)

	require.Len(t, days, 1)
	assert.Equal(t, "Bruno Reis", days[0].EmployeeName)
	assert.Equal(t, timeclock.StateLastWasBreak.String(), days[0].State)
	assert.Equal(t, "03:00", days[0].Worked)
	assert.Equal(t, []timeclock.Kind{timeclock.KindEntry, timeclock.KindExit}, days[0].Allowed)
}

func TestFindIncompleteFallsBackToID(t *testing.T) {
	days := FindIncomplete([]timeclock.Punch{punch("ghost", "2024-03-01", "08:00", timeclock.KindEntry)}, nil)
	require.Len(t, days, 1)
	assert.Equal(t, "ghost", days[0].EmployeeName)
	assert.Empty(t, FindIncomplete(nil, nil))
}
