package auth

import (
	"errors"
	"fmt"
)

// Role is the closed set of user roles. Authorization decisions switch
// exhaustively on these values; adding a role means touching every switch.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleStaff      Role = "staff"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleStaff, RoleAdmin, RoleSuperAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) String() string { return string(r) }

// CanManageCompany reports whether the role may administer company-level
// resources (locations, services, staff, availability).
func (r Role) CanManageCompany() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin:
		return true
	case RoleCustomer, RoleStaff:
		return false
	}
	return false
}
