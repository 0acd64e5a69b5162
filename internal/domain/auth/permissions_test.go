package auth

import "testing"

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestEmployeeCannotReadOthersOrExport(t *testing.T) {
	perms := StaticPermissions{}
	if !perms.HasPermission(RoleEmployee, PermPunchesWrite) {
		t.Fatal("employee must be able to punch")
	}
	for _, perm := range []string{PermPunchesReadAll, PermReportsExport, PermEmployeesWrite} {
		if perms.HasPermission(RoleEmployee, perm) {
			t.Fatalf("employee should not have %s", perm)
		}
	}
	if perms.HasPermission("contractor", PermPunchesWrite) {
		t.Fatal("unknown role should have no permissions")
	}
}
