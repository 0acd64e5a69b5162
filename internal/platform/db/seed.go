package db

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"ponto/internal/domain/auth"
	"ponto/internal/domain/core"
	"ponto/internal/platform/config"
)

// Seed creates the first administrator when the table has none. Without
// SEED_ADMIN_CPF and SEED_ADMIN_PASSWORD it does nothing.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if strings.TrimSpace(cfg.SeedAdminCPF) == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return nil
	}

	var admins int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE role = $1", core.RoleAdmin).Scan(&admins); err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}

	svc := core.NewService(core.NewStore(pool), core.Passwords{
		Hash:     auth.HashPassword,
		Validate: auth.ValidatePassword,
	}, cfg.DefaultTargetShiftMinutes)
	emp, err := svc.CreateEmployee(ctx, core.EmployeeInput{
		Name:     cfg.SeedAdminName,
		CPF:      cfg.SeedAdminCPF,
		Position: "Administrador",
		Role:     core.RoleAdmin,
		Password: cfg.SeedAdminPassword,
	})
	if err != nil {
		return err
	}
	slog.Info("seed admin created", "employeeId", emp.ID)
	return nil
}
