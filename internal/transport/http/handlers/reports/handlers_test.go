package reportshandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ponto/internal/domain/audit"
	"ponto/internal/domain/auth"
	"ponto/internal/domain/core"
	"ponto/internal/domain/reports"
	"ponto/internal/domain/timeclock"
	"ponto/internal/transport/http/middleware"
)

var brt = time.FixedZone("BRT", -3*60*60)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

type stubReports struct {
	lastStart, lastEnd string
}

func (s *stubReports) EmployeeReport(ctx context.Context, employeeID, start, end string) (reports.Report, error) {
	s.lastStart, s.lastEnd = start, end
	if employeeID == "emp-3" {
		return reports.Report{}, timeclock.ErrMissingEmployeeContext
	}
	if employeeID != "emp-1" {
		return reports.Report{}, core.ErrEmployeeNotFound
	}
	day := time.Date(2024, 3, 1, 8, 0, 0, 0, brt)
	punches := []timeclock.Punch{
		{ID: "1", EmployeeID: "emp-1", Kind: timeclock.KindEntry, At: day},
		{ID: "2", EmployeeID: "emp-1", Kind: timeclock.KindExit, At: day.Add(8 * time.Hour)},
	}
	emp := core.Employee{ID: "emp-1", Name: "Ana Lima", CPF: "52998224725", TargetShiftMinutes: 480}
	return reports.NewReport(emp, start, end, punches, 0)
}

func (s *stubReports) IncompleteDays(ctx context.Context, date string) ([]reports.IncompleteDay, error) {
	return []reports.IncompleteDay{{EmployeeID: "emp-2", Date: date, State: "entry"}}, nil
}

func (s *stubReports) JobRuns(ctx context.Context, filter reports.JobRunFilter, limit, offset int) ([]reports.JobRun, int, error) {
	return []reports.JobRun{{ID: "run-1", JobType: filter.JobType, Status: "completed"}}, 7, nil
}

type stubJobs struct {
	scanned []string
}

func (s *stubJobs) ScanIncomplete(ctx context.Context, date string) (any, error) {
	s.scanned = append(s.scanned, date)
	return map[string]any{"date": date, "incomplete": 0}, nil
}

func (s *stubJobs) PreviousDate() string { return "2024-03-14" }

type recordedAudit struct {
	actions []string
}

func (a *recordedAudit) Record(ctx context.Context, entry audit.Entry) error {
	a.actions = append(a.actions, entry.Action)
	return nil
}

type fixture struct {
	reports *stubReports
	jobs    *stubJobs
	audit   *recordedAudit
	router  http.Handler
}

func newFixture() *fixture {
	f := &fixture{reports: &stubReports{}, jobs: &stubJobs{}, audit: &recordedAudit{}}
	r := chi.NewRouter()
	clock := fixedClock(time.Date(2024, 3, 15, 10, 0, 0, 0, brt))
	NewHandler(f.reports, f.jobs, clock, auth.StaticPermissions{}, f.audit).RegisterRoutes(r)
	f.router = r
	return f
}

func (f *fixture) get(method, path, employeeID, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{EmployeeID: employeeID, Role: role}))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestEmployeeReportDefaultsToCurrentMonth(t *testing.T) {
	f := newFixture()
	rec := f.get(http.MethodGet, "/reports/employees/emp-1", "emp-1", auth.RoleEmployee)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2024-03-01", f.reports.lastStart)
	assert.Equal(t, "2024-03-15", f.reports.lastEnd)
	assert.Contains(t, rec.Body.String(), `"total":"08:00"`)
}

func TestEmployeeCannotReadOthersReport(t *testing.T) {
	f := newFixture()
	rec := f.get(http.MethodGet, "/reports/employees/emp-2", "emp-1", auth.RoleEmployee)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.get(http.MethodGet, "/reports/employees/emp-2", "adm-1", auth.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportCSV(t *testing.T) {
	f := newFixture()
	rec := f.get(http.MethodGet, "/reports/employees/emp-1/export?format=csv&start=2024-03-01&end=2024-03-01", "adm-1", auth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=ponto-emp-1-2024-03-01-2024-03-01.csv", rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Date,Punches,Worked,Balance"))
	assert.Equal(t, []string{audit.ActionReportExport}, f.audit.actions)
}

func TestAttachmentDispositionQuotesFilename(t *testing.T) {
	assert.Equal(t, "attachment; filename=ponto-emp-1.csv", attachmentDisposition("ponto-emp-1.csv"))
	assert.Equal(t, `attachment; filename="ponto emp 1.csv"`, attachmentDisposition("ponto emp 1.csv"))
	assert.Equal(t, `attachment; filename="ponto \"a\".csv"`, attachmentDisposition(`ponto "a".csv`))
}

func TestReportWithoutEmployeeContextIsValidationError(t *testing.T) {
	f := newFixture()
	rec := f.get(http.MethodGet, "/reports/employees/emp-3", "adm-1", auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"validation_error"`)
	assert.NotContains(t, rec.Body.String(), "missing_context")
}

func TestExportRejectsUnknownFormatAndBadDates(t *testing.T) {
	f := newFixture()
	rec := f.get(http.MethodGet, "/reports/employees/emp-1/export?format=docx", "adm-1", auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "format")

	rec = f.get(http.MethodGet, "/reports/employees/emp-1/export?format=pdf&start=03/01/2024", "adm-1", auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.audit.actions)
}

func TestIncompleteAndJobs(t *testing.T) {
	f := newFixture()

	rec := f.get(http.MethodGet, "/reports/incomplete?date=2024-03-14", "adm-1", auth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"employeeId":"emp-2"`)

	rec = f.get(http.MethodGet, "/reports/incomplete", "emp-1", auth.RoleEmployee)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.get(http.MethodGet, "/reports/jobs?jobType=incomplete_day_scan", "adm-1", auth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Header().Get("X-Total-Count"))

	rec = f.get(http.MethodPost, "/reports/jobs/incomplete-scan", "adm-1", auth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"2024-03-14"}, f.jobs.scanned)
}
