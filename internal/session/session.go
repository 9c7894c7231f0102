package session

import (
	"errors"
	"fmt"

	"github.com/almirah-shop/storefront/internal/types"
)

var (
	// ErrCredentialRejected means the backend refused the credential itself;
	// the session is torn down.
	ErrCredentialRejected = errors.New("credential rejected")
	ErrNotAuthenticated   = errors.New("not logged in")
	// ErrRoleUndetermined accompanies a fail-open customer role when the
	// backend could not be asked; it never tears a session down.
	ErrRoleUndetermined = errors.New("role could not be determined")
)

// Session is an immutable snapshot of who is using the storefront.
type Session struct {
	Principal  string
	Role       types.Role
	Credential string
	// Portal is the entry point the session was opened through; the customer
	// storefront when empty.
	Portal types.Role
}

// New builds a session and enforces that a non-anonymous role carries a credential.
func New(principal string, role types.Role, credential string) (Session, error) {
	if role == "" {
		role = types.RoleAnonymous
	}
	if role != types.RoleAnonymous && credential == "" {
		return Session{}, fmt.Errorf("role %s requires a credential", role)
	}
	return Session{Principal: principal, Role: role, Credential: credential}, nil
}

func Anonymous() Session {
	return Session{Role: types.RoleAnonymous}
}

func (s Session) Authenticated() bool {
	return s.Credential != "" && s.Role.Authenticated()
}

func (s Session) entry() types.Role {
	if s.Portal == "" || s.Portal == types.RoleAnonymous {
		return types.RoleCustomer
	}
	return s.Portal
}

// PortalError reports a credential whose role does not belong at the entry
// point it was presented to.
type PortalError struct {
	Role  types.Role
	Entry types.Role
}

func (e *PortalError) Error() string {
	if e.Entry == types.RoleCustomer && e.Role.Privileged() {
		return fmt.Sprintf("%s accounts must sign in through the dedicated %s portal", e.Role, e.Role)
	}
	return fmt.Sprintf("this account does not have %s access", e.Entry)
}
