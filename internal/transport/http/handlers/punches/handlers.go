package puncheshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ponto/internal/domain/audit"
	"ponto/internal/domain/auth"
	"ponto/internal/domain/punches"
	"ponto/internal/domain/timeclock"
	"ponto/internal/transport/http/api"
	"ponto/internal/transport/http/middleware"
	"ponto/internal/transport/http/shared"
)

const recordEndpoint = "POST /punches"

type PunchService interface {
	Record(ctx context.Context, employeeID, rawKind string) (timeclock.Punch, error)
	Today(ctx context.Context, employeeID string) (punches.DayView, error)
	Range(ctx context.Context, employeeID, start, end string) ([]timeclock.Punch, []timeclock.Skipped, error)
	Now() time.Time
}

type IdempotencyStore interface {
	Check(ctx context.Context, employeeID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, employeeID, endpoint, key, requestHash string, response json.RawMessage) error
}

type Handler struct {
	Service     PunchService
	Perms       middleware.PermissionChecker
	Idempotency IdempotencyStore
	Audit       shared.Auditor
}

func NewHandler(service PunchService, perms middleware.PermissionChecker, idem IdempotencyStore, auditor shared.Auditor) *Handler {
	return &Handler{Service: service, Perms: perms, Idempotency: idem, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermPunchesRead, h.Perms)).Get("/punches/today", h.handleToday)
	r.With(middleware.RequirePermission(auth.PermPunchesWrite, h.Perms)).Post("/punches", h.handleRecord)
	r.With(middleware.RequireUser).Get("/employees/{employeeID}/punches", h.handleEmployeePunches)
}

type recordRequest struct {
	Kind string `json:"kind" validate:"required"`
}

type todayView struct {
	Date          string            `json:"date"`
	State         string            `json:"state"`
	Allowed       []timeclock.Kind  `json:"allowed"`
	Worked        string            `json:"worked"`
	WorkedMinutes int64             `json:"workedMinutes"`
	Punches       []timeclock.Punch `json:"punches"`
	Skipped       int               `json:"skipped"`
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	day, err := h.Service.Today(r.Context(), user.EmployeeID)
	if err != nil {
		writePunchError(w, r, err)
		return
	}
	api.Success(w, todayView{
		Date:          day.Date,
		State:         day.State.String(),
		Allowed:       day.Allowed,
		Worked:        timeclock.FormatDuration(day.Worked),
		WorkedMinutes: timeclock.Minutes(day.Worked),
		Punches:       day.Punches,
		Skipped:       len(day.Skipped),
	}, middleware.GetRequestID(r.Context()))
}

// handleRecord honours an optional Idempotency-Key header: a retried request
// with the same key and body gets the stored response instead of a second punch.
func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	key := r.Header.Get("Idempotency-Key")
	hash := middleware.RequestHash(body)
	if key != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), user.EmployeeID, recordEndpoint, key, hash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload", requestID)
			return
		}
		if err != nil {
			slog.Warn("idempotency lookup failed", "employeeId", user.EmployeeID, "err", err)
		}
		if found {
			api.Replay(w, http.StatusCreated, stored, requestID)
			return
		}
	}

	var payload recordRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}

	punch, err := h.Service.Record(r.Context(), user.EmployeeID, payload.Kind)
	if err != nil {
		var transition *timeclock.TransitionError
		if errors.As(err, &transition) {
			shared.Audit(r, h.Audit, audit.Entry{
				Action:     audit.ActionPunchReject,
				EntityType: "punch",
				EntityID:   user.EmployeeID,
				After:      map[string]string{"requested": transition.Requested.String(), "state": transition.State.String()},
			})
		}
		writePunchError(w, r, err)
		return
	}

	if key != "" && h.Idempotency != nil {
		raw, err := json.Marshal(punch)
		if err == nil {
			err = h.Idempotency.Save(r.Context(), user.EmployeeID, recordEndpoint, key, hash, raw)
		}
		if err != nil {
			slog.Warn("idempotency save failed", "employeeId", user.EmployeeID, "err", err)
		}
	}
	shared.Audit(r, h.Audit, audit.Entry{
		Action:     audit.ActionPunchRecord,
		EntityType: "punch",
		EntityID:   punch.ID,
		After:      punch,
	})
	api.Created(w, punch, requestID)
}

type rangeView struct {
	EmployeeID string            `json:"employeeId"`
	Start      string            `json:"start"`
	End        string            `json:"end"`
	Punches    []timeclock.Punch `json:"punches"`
	Skipped    int               `json:"skipped"`
}

func (h *Handler) handleEmployeePunches(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	perm := auth.PermPunchesReadAll
	if employeeID == user.EmployeeID {
		perm = auth.PermPunchesRead
	}
	if !h.Perms.HasPermission(user.Role, perm) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
		return
	}

	today := h.Service.Now().Format(timeclock.DateLayout)
	v := shared.NewValidator()
	start := v.DayParam("start", r.URL.Query().Get("start"), today)
	end := v.DayParam("end", r.URL.Query().Get("end"), today)
	if v.Reject(w, requestID) {
		return
	}

	list, skipped, err := h.Service.Range(r.Context(), employeeID, start, end)
	if err != nil {
		writePunchError(w, r, err)
		return
	}
	if list == nil {
		list = []timeclock.Punch{}
	}
	api.Success(w, rangeView{EmployeeID: employeeID, Start: start, End: end, Punches: list, Skipped: len(skipped)}, requestID)
}

func writePunchError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	var transition *timeclock.TransitionError
	var unknown *timeclock.UnknownKindError
	switch {
	case errors.As(err, &transition):
		allowed := transition.Allowed
		if allowed == nil {
			allowed = []timeclock.Kind{}
		}
		api.FailWithDetails(w, http.StatusConflict, "illegal_transition", err.Error(), map[string]any{
			"state":     transition.State.String(),
			"requested": transition.Requested,
			"allowed":   allowed,
		}, requestID)
	case errors.As(err, &unknown):
		api.FailWithDetails(w, http.StatusBadRequest, "unknown_kind", err.Error(), map[string]any{
			"allowed": []timeclock.Kind{timeclock.KindEntry, timeclock.KindBreak, timeclock.KindExit},
		}, requestID)
	case errors.Is(err, timeclock.ErrMissingEmployeeContext):
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
	case errors.Is(err, punches.ErrInvalidDate):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "end", Reason: err.Error()}})
	default:
		slog.Error("punch request failed", "path", r.URL.Path, "err", err)
		api.Fail(w, http.StatusInternalServerError, "punch_failed", "failed to process punch", requestID)
	}
}
