package corehandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ponto/internal/domain/audit"
	"ponto/internal/domain/auth"
	"ponto/internal/domain/core"
	"ponto/internal/transport/http/api"
	"ponto/internal/transport/http/middleware"
	"ponto/internal/transport/http/shared"
)

type EmployeeService interface {
	ListEmployees(ctx context.Context, limit, offset int) ([]core.Employee, int, error)
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
	CreateEmployee(ctx context.Context, in core.EmployeeInput) (core.Employee, error)
	UpdateEmployee(ctx context.Context, employeeID string, in core.EmployeeInput) (core.Employee, error)
	DeleteEmployee(ctx context.Context, employeeID string) error
}

type Handler struct {
	Service EmployeeService
	Perms   middleware.PermissionChecker
	Audit   shared.Auditor
}

func NewHandler(service EmployeeService, perms middleware.PermissionChecker, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor}
}

// RegisterRoutes uses flat patterns so other handlers can hang routes under
// /employees/{employeeID}.
func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)
	write := middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)

	r.With(middleware.RequireUser).Get("/me", h.handleMe)
	r.With(read).Get("/employees", h.handleListEmployees)
	r.With(write).Post("/employees", h.handleCreateEmployee)
	r.With(read).Get("/employees/{employeeID}", h.handleGetEmployee)
	r.With(write).Put("/employees/{employeeID}", h.handleUpdateEmployee)
	r.With(write).Delete("/employees/{employeeID}", h.handleDeleteEmployee)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Service.GetEmployee(r.Context(), user.EmployeeID)
	if err != nil {
		writeEmployeeError(w, r, err)
		return
	}
	api.Success(w, map[string]any{
		"employee":     emp,
		"role":         user.Role,
		"formattedCpf": emp.FormattedCPF(),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	employees, total, err := h.Service.ListEmployees(r.Context(), page.Limit, page.Offset)
	if err != nil {
		writeEmployeeError(w, r, err)
		return
	}
	if employees == nil {
		employees = []core.Employee{}
	}
	shared.SetTotal(w, total)
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Service.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeEmployeeError(w, r, err)
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload core.EmployeeInput
	if !shared.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}
	emp, err := h.Service.CreateEmployee(r.Context(), payload)
	if err != nil {
		writeEmployeeError(w, r, err)
		return
	}

	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionEmployeeCreate,
		EntityType: "employee",
		EntityID:   emp.ID,
		After:      emp,
	})
	api.Created(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	var payload core.EmployeeInput
	if !shared.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}

	before, err := h.Service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		writeEmployeeError(w, r, err)
		return
	}
	emp, err := h.Service.UpdateEmployee(r.Context(), employeeID, payload)
	if err != nil {
		writeEmployeeError(w, r, err)
		return
	}

	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionEmployeeUpdate,
		EntityType: "employee",
		EntityID:   employeeID,
		Before:     before,
		After:      emp,
	})
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if user, _ := middleware.GetUser(r.Context()); user.EmployeeID == employeeID {
		api.Fail(w, http.StatusConflict, "self_delete", "administrators cannot delete themselves", middleware.GetRequestID(r.Context()))
		return
	}
	before, err := h.Service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		writeEmployeeError(w, r, err)
		return
	}
	if err := h.Service.DeleteEmployee(r.Context(), employeeID); err != nil {
		writeEmployeeError(w, r, err)
		return
	}

	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionEmployeeDelete,
		EntityType: "employee",
		EntityID:   employeeID,
		Before:     before,
	})
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func writeEmployeeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	var invalid *core.ValidationError
	switch {
	case errors.As(err, &invalid):
		issues := make([]shared.ValidationIssue, 0, len(invalid.Issues))
		for _, issue := range invalid.Issues {
			issues = append(issues, shared.ValidationIssue{Field: issue.Field, Reason: issue.Reason})
		}
		shared.FailValidation(w, requestID, issues)
	case errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, core.ErrCPFTaken):
		api.Fail(w, http.StatusConflict, "cpf_taken", "cpf already registered", requestID)
	default:
		slog.Error("employee request failed", "path", r.URL.Path, "err", err)
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to process employee", requestID)
	}
}
