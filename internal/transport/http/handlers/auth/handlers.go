package authhandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ponto/internal/domain/audit"
	"ponto/internal/domain/auth"
	"ponto/internal/transport/http/api"
	"ponto/internal/transport/http/middleware"
	"ponto/internal/transport/http/shared"
)

type Service interface {
	Login(ctx context.Context, cpf, password string) (auth.LoginResult, error)
	Logout(ctx context.Context, user auth.UserContext) error
}

type Handler struct {
	Service    Service
	Audit      shared.Auditor
	LoginLimit func(http.Handler) http.Handler
}

func NewHandler(service Service, auditor shared.Auditor, loginLimit func(http.Handler) http.Handler) *Handler {
	return &Handler{Service: service, Audit: auditor, LoginLimit: loginLimit}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	login := http.Handler(http.HandlerFunc(h.HandleLogin))
	if h.LoginLimit != nil {
		login = h.LoginLimit(login)
	}
	r.Method(http.MethodPost, "/auth/login", login)
	r.With(middleware.RequireUser).Post("/auth/logout", h.HandleLogout)
}

type loginRequest struct {
	CPF      string `json:"cpf" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}

	result, err := h.Service.Login(r.Context(), payload.CPF, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid cpf or password", requestID)
		return
	}
	if err != nil {
		slog.Error("login failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to start session", requestID)
		return
	}

	shared.Audit(r, h.Audit, audit.Entry{
		ActorID:    result.EmployeeID,
		Action:     audit.ActionLogin,
		EntityType: "employee",
		EntityID:   result.EmployeeID,
	})
	api.Success(w, result, requestID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if err := h.Service.Logout(r.Context(), user); err != nil {
		slog.Warn("logout session revoke failed", "employeeId", user.EmployeeID, "err", err)
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}
