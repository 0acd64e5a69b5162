package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ponto/internal/domain/core"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 20
)

var (
	ErrInvalidCredentials = errors.New("invalid cpf or password")
	ErrInvalidPassword    = fmt.Errorf("password must be between %d and %d characters", MinPasswordLength, MaxPasswordLength)
)

type StoreAPI interface {
	FindActiveByCPF(ctx context.Context, cpf string) (Credentials, error)
	CreateSession(ctx context.Context, sessionID, employeeID string, expires time.Time) error
	UpdateLastLogin(ctx context.Context, employeeID string) error
	RevokeSession(ctx context.Context, sessionID, employeeID string) error
	SessionActive(ctx context.Context, sessionID string) (bool, error)
}

type Service struct {
	Store  StoreAPI
	Secret string
	TTL    time.Duration
	Now    func() time.Time
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TTL: ttl, Now: time.Now}
}

func ValidatePassword(password string) error {
	if n := len([]rune(password)); n < MinPasswordLength || n > MaxPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

type LoginResult struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
	EmployeeID string    `json:"employeeId"`
	Role       string    `json:"role"`
}

func (s *Service) Login(ctx context.Context, cpf, password string) (LoginResult, error) {
	normalized := core.NormalizeCPF(cpf)
	if !core.ValidCPF(normalized) || ValidatePassword(password) != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	creds, err := s.Store.FindActiveByCPF(ctx, normalized)
	if errors.Is(err, pgx.ErrNoRows) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := CheckPassword(creds.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	expires := s.Now().Add(s.TTL)
	if err := s.Store.CreateSession(ctx, sessionID, creds.EmployeeID, expires); err != nil {
		return LoginResult{}, err
	}
	if err := s.Store.UpdateLastLogin(ctx, creds.EmployeeID); err != nil {
		slog.Warn("last login update failed", "employeeId", creds.EmployeeID, "err", err)
	}

	token, err := GenerateToken(s.Secret, Claims{EmployeeID: creds.EmployeeID, Role: creds.Role, SessionID: sessionID}, s.TTL)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: expires, EmployeeID: creds.EmployeeID, Role: creds.Role}, nil
}

func (s *Service) Logout(ctx context.Context, user UserContext) error {
	return s.Store.RevokeSession(ctx, user.SessionID, user.EmployeeID)
}

func (s *Service) SessionActive(ctx context.Context, sessionID string) (bool, error) {
	return s.Store.SessionActive(ctx, sessionID)
}
