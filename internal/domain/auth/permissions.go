package auth

import "ponto/internal/domain/core"

const (
	RoleAdmin    = core.RoleAdmin
	RoleEmployee = core.RoleEmployee
)

const (
	PermEmployeesRead  = "employees.read"
	PermEmployeesWrite = "employees.write"
	PermPunchesWrite   = "punches.write"
	PermPunchesRead    = "punches.read"
	PermPunchesReadAll = "punches.read_all"
	PermReportsRead    = "reports.read"
	PermReportsExport  = "reports.export"
	PermJobsRead       = "jobs.read"
	PermJobsRun        = "jobs.run"
	PermAuditRead      = "audit.read"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermPunchesWrite,
	PermPunchesRead,
	PermPunchesReadAll,
	PermReportsRead,
	PermReportsExport,
	PermJobsRead,
	PermJobsRun,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermPunchesWrite,
		PermPunchesRead,
	},
	RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermPunchesWrite,
		PermPunchesRead,
		PermPunchesReadAll,
		PermReportsRead,
		PermReportsExport,
		PermJobsRead,
		PermJobsRun,
		PermAuditRead,
	},
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
