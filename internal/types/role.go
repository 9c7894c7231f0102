package types

import "fmt"

// Role is the storefront principal's authorization level.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleCustomer  Role = "customer"
	RoleSeller    Role = "seller"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a wire role string to a Role. The empty string is anonymous.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleAnonymous:
		return RoleAnonymous, nil
	case RoleCustomer, RoleSeller, RoleAdmin:
		return Role(s), nil
	default:
		return RoleAnonymous, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	if r == "" {
		return string(RoleAnonymous)
	}
	return string(r)
}

// Privileged reports whether the role belongs to a dedicated portal.
func (r Role) Privileged() bool {
	return r == RoleSeller || r == RoleAdmin
}

func (r Role) Authenticated() bool {
	return r == RoleCustomer || r.Privileged()
}
