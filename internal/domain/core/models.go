package core

import "time"

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)

type Employee struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	CPF                string    `json:"cpf"`
	Position           string    `json:"position"`
	Role               string    `json:"role"`
	TargetShiftMinutes int       `json:"targetShiftMinutes"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// FormattedCPF renders the stored digits as 000.000.000-00.
func (e Employee) FormattedCPF() string {
	return FormatCPF(e.CPF)
}

// EmployeeInput carries the writable fields of an employee. Password is only
// honoured on create, or on update when non-empty.
type EmployeeInput struct {
	Name               string `json:"name"`
	CPF                string `json:"cpf"`
	Position           string `json:"position"`
	Role               string `json:"role"`
	TargetShiftMinutes int    `json:"targetShiftMinutes"`
	Status             string `json:"status"`
	Password           string `json:"password,omitempty"`
}
