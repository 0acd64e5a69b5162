package reportshandler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ponto/internal/domain/audit"
	"ponto/internal/domain/auth"
	"ponto/internal/domain/core"
	"ponto/internal/domain/punches"
	"ponto/internal/domain/reports"
	"ponto/internal/domain/timeclock"
	"ponto/internal/transport/http/api"
	"ponto/internal/transport/http/middleware"
	"ponto/internal/transport/http/shared"
)

type ReportService interface {
	EmployeeReport(ctx context.Context, employeeID, start, end string) (reports.Report, error)
	IncompleteDays(ctx context.Context, date string) ([]reports.IncompleteDay, error)
	JobRuns(ctx context.Context, filter reports.JobRunFilter, limit, offset int) ([]reports.JobRun, int, error)
}

// ScanRunner triggers the incomplete-day job on demand.
type ScanRunner interface {
	ScanIncomplete(ctx context.Context, date string) (any, error)
	PreviousDate() string
}

type Clock interface {
	Now() time.Time
}

type Handler struct {
	Service ReportService
	Jobs    ScanRunner
	Clock   Clock
	Perms   middleware.PermissionChecker
	Audit   shared.Auditor
}

func NewHandler(service ReportService, jobs ScanRunner, clock Clock, perms middleware.PermissionChecker, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Jobs: jobs, Clock: clock, Perms: perms, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequireUser).Get("/employees/{employeeID}", h.handleEmployeeReport)
		r.With(middleware.RequireUser).Get("/employees/{employeeID}/export", h.handleExport)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/incomplete", h.handleIncomplete)
		r.With(middleware.RequirePermission(auth.PermJobsRead, h.Perms)).Get("/jobs", h.handleJobRuns)
		r.With(middleware.RequirePermission(auth.PermJobsRun, h.Perms)).Post("/jobs/incomplete-scan", h.handleRunScan)
	})
}

// allowed lets employees read their own report; everyone else needs perm.
func (h *Handler) allowed(w http.ResponseWriter, r *http.Request, employeeID, perm string) bool {
	user, _ := middleware.GetUser(r.Context())
	if employeeID == user.EmployeeID && h.Perms.HasPermission(user.Role, auth.PermPunchesRead) {
		return true
	}
	if h.Perms.HasPermission(user.Role, perm) {
		return true
	}
	api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
	return false
}

// period reads start/end, defaulting to the current month up to today.
func (h *Handler) period(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	now := h.Clock.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	v := shared.NewValidator()
	start := v.DayParam("start", r.URL.Query().Get("start"), firstOfMonth.Format(timeclock.DateLayout))
	end := v.DayParam("end", r.URL.Query().Get("end"), now.Format(timeclock.DateLayout))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return "", "", false
	}
	return start, end, true
}

func (h *Handler) handleEmployeeReport(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if !h.allowed(w, r, employeeID, auth.PermReportsRead) {
		return
	}
	start, end, ok := h.period(w, r)
	if !ok {
		return
	}
	report, err := h.Service.EmployeeReport(r.Context(), employeeID, start, end)
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	api.Success(w, report.View(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	if !h.allowed(w, r, employeeID, auth.PermReportsExport) {
		return
	}
	format, err := reports.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "format", Reason: "must be one of: pdf, xlsx, csv, table"}})
		return
	}
	start, end, ok := h.period(w, r)
	if !ok {
		return
	}
	report, err := h.Service.EmployeeReport(r.Context(), employeeID, start, end)
	if err != nil {
		writeReportError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := reports.Render(&buf, format, report); err != nil {
		slog.Error("report render failed", "employeeId", employeeID, "format", string(format), "err", err)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to render report", requestID)
		return
	}

	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionReportExport,
		EntityType: "report",
		EntityID:   employeeID,
		After:      map[string]string{"format": string(format), "start": start, "end": end},
	})
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", attachmentDisposition(format.FileName(report)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("report export write failed", "employeeId", employeeID, "err", err)
	}
}

// attachmentDisposition quotes the filename when it carries non-token characters.
func attachmentDisposition(name string) string {
	if value := mime.FormatMediaType("attachment", map[string]string{"filename": name}); value != "" {
		return value
	}
	return "attachment"
}

func (h *Handler) handleIncomplete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	date := v.DayParam("date", r.URL.Query().Get("date"), h.Clock.Now().Format(timeclock.DateLayout))
	if v.Reject(w, requestID) {
		return
	}
	days, err := h.Service.IncompleteDays(r.Context(), date)
	if err != nil {
		writeReportError(w, r, err)
		return
	}
	api.Success(w, days, requestID)
}

func (h *Handler) handleJobRuns(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()
	page := shared.ParsePagination(r, 50, 200)
	filter := reports.JobRunFilter{JobType: query.Get("jobType"), Status: query.Get("status")}

	v := shared.NewValidator()
	if raw := query.Get("startedFrom"); raw != "" {
		if from, ok := v.Date("startedFrom", raw); ok {
			filter.StartedFrom = &from
		}
	}
	if raw := query.Get("startedTo"); raw != "" {
		if to, ok := v.Date("startedTo", raw); ok {
			filter.StartedTo = &to
		}
	}
	if filter.StartedFrom != nil && filter.StartedTo != nil {
		v.DateOrder("startedFrom", *filter.StartedFrom, "startedTo", *filter.StartedTo)
	}
	if v.Reject(w, requestID) {
		return
	}

	runs, total, err := h.Service.JobRuns(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		slog.Error("job runs list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "job_runs_failed", "failed to list job runs", requestID)
		return
	}
	if runs == nil {
		runs = []reports.JobRun{}
	}
	shared.SetTotal(w, total)
	api.Success(w, runs, requestID)
}

func (h *Handler) handleRunScan(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	date := v.DayParam("date", r.URL.Query().Get("date"), h.Jobs.PreviousDate())
	if v.Reject(w, requestID) {
		return
	}
	details, err := h.Jobs.ScanIncomplete(r.Context(), date)
	if err != nil {
		slog.Error("incomplete scan failed", "date", date, "err", err)
		api.Fail(w, http.StatusInternalServerError, "job_failed", "incomplete-day scan failed", requestID)
		return
	}
	api.Success(w, details, requestID)
}

func writeReportError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, punches.ErrInvalidDate):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "end", Reason: err.Error()}})
	case errors.Is(err, timeclock.ErrMissingEmployeeContext):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "employeeId", Reason: err.Error()}})
	default:
		slog.Error("report request failed", "path", r.URL.Path, "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", requestID)
	}
}
