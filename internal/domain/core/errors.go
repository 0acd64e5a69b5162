package core

import (
	"errors"
	"strings"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrCPFTaken         = errors.New("cpf already registered")
)

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every rejected field of an employee payload.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+" "+issue.Reason)
	}
	return "invalid employee: " + strings.Join(parts, "; ")
}
