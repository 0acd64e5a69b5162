package core

import (
	"context"
	"fmt"
)

type StoreAPI interface {
	ListEmployees(ctx context.Context, limit, offset int) ([]Employee, error)
	CountEmployees(ctx context.Context) (int, error)
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	CreateEmployee(ctx context.Context, in EmployeeInput, passwordHash string) (string, error)
	UpdateEmployee(ctx context.Context, employeeID string, in EmployeeInput, passwordHash string) error
	DeleteEmployee(ctx context.Context, employeeID string) error
	ActiveEmployees(ctx context.Context) ([]Employee, error)
}

// Passwords hashes and vets employee passwords. It lives outside this package
// so that employee management does not depend on the session layer.
type Passwords struct {
	Hash     func(string) (string, error)
	Validate func(string) error
}

type Service struct {
	store         StoreAPI
	passwords     Passwords
	defaultTarget int
}

func NewService(store StoreAPI, passwords Passwords, defaultTarget int) *Service {
	return &Service{store: store, passwords: passwords, defaultTarget: defaultTarget}
}

func (s *Service) DefaultTarget() int {
	return s.defaultTarget
}

func (s *Service) ListEmployees(ctx context.Context, limit, offset int) ([]Employee, int, error) {
	total, err := s.store.CountEmployees(ctx)
	if err != nil {
		return nil, 0, err
	}
	employees, err := s.store.ListEmployees(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func (s *Service) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) ActiveEmployees(ctx context.Context) ([]Employee, error) {
	return s.store.ActiveEmployees(ctx)
}

func (s *Service) CreateEmployee(ctx context.Context, in EmployeeInput) (Employee, error) {
	in = in.Normalize(s.defaultTarget)
	if err := in.Validate(true, s.passwords.Validate); err != nil {
		return Employee{}, err
	}
	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return Employee{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.store.CreateEmployee(ctx, in, hash)
	if err != nil {
		return Employee{}, err
	}
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) UpdateEmployee(ctx context.Context, employeeID string, in EmployeeInput) (Employee, error) {
	in = in.Normalize(s.defaultTarget)
	if err := in.Validate(false, s.passwords.Validate); err != nil {
		return Employee{}, err
	}
	var hash string
	if in.Password != "" {
		var err error
		if hash, err = s.passwords.Hash(in.Password); err != nil {
			return Employee{}, fmt.Errorf("hash password: %w", err)
		}
	}
	if err := s.store.UpdateEmployee(ctx, employeeID, in, hash); err != nil {
		return Employee{}, err
	}
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) DeleteEmployee(ctx context.Context, employeeID string) error {
	return s.store.DeleteEmployee(ctx, employeeID)
}
