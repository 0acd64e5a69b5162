package core

import (
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength      = 3
	MaxNameLength      = 50
	MinPositionLength  = 2
	MaxPositionLength  = 50
	MaxTargetShiftMins = 24 * 60
)

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}

func validStatus(status string) bool {
	return status == EmployeeStatusActive || status == EmployeeStatusInactive
}

// Normalize trims text fields, strips CPF punctuation and fills defaults.
func (in EmployeeInput) Normalize(defaultTarget int) EmployeeInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Position = strings.TrimSpace(in.Position)
	in.CPF = NormalizeCPF(in.CPF)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if in.Role == "" {
		in.Role = RoleEmployee
	}
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if in.Status == "" {
		in.Status = EmployeeStatusActive
	}
	if in.TargetShiftMinutes == 0 {
		in.TargetShiftMinutes = defaultTarget
	}
	return in
}

// Validate expects a normalized input. requirePassword is set on create.
func (in EmployeeInput) Validate(requirePassword bool, validPassword func(string) error) error {
	var issues []FieldIssue
	add := func(field, reason string) {
		issues = append(issues, FieldIssue{Field: field, Reason: reason})
	}

	if n := utf8.RuneCountInString(in.Name); n < MinNameLength || n > MaxNameLength {
		add("name", "must be between 3 and 50 characters")
	}
	if !ValidCPF(in.CPF) {
		add("cpf", "must be a valid cpf")
	}
	if n := utf8.RuneCountInString(in.Position); n < MinPositionLength || n > MaxPositionLength {
		add("position", "must be between 2 and 50 characters")
	}
	if !ValidRole(in.Role) {
		add("role", "must be admin or employee")
	}
	if !validStatus(in.Status) {
		add("status", "must be active or inactive")
	}
	if in.TargetShiftMinutes < 1 || in.TargetShiftMinutes > MaxTargetShiftMins {
		add("targetShiftMinutes", "must be between 1 and 1440")
	}
	switch {
	case in.Password == "" && requirePassword:
		add("password", "is required")
	case in.Password != "" && validPassword != nil:
		if err := validPassword(in.Password); err != nil {
			add("password", err.Error())
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
