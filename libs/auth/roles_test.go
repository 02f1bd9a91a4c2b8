package auth

import "testing"

func TestParseRole(t *testing.T) {
	for _, s := range []string{"customer", "staff", "admin", "superadmin"} {
		role, err := ParseRole(s)
		if err != nil {
			t.Fatalf("ParseRole(%q) failed: %v", s, err)
		}
		if role.String() != s {
			t.Fatalf("ParseRole(%q) = %q", s, role)
		}
	}
	if _, err := ParseRole("owner"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestCanManageCompany(t *testing.T) {
	if RoleCustomer.CanManageCompany() || RoleStaff.CanManageCompany() {
		t.Fatal("customer/staff must not manage company resources")
	}
	if !RoleAdmin.CanManageCompany() || !RoleSuperAdmin.CanManageCompany() {
		t.Fatal("admin/superadmin must manage company resources")
	}
}
