package kernel

import (
	"fmt"
	"strings"

	"fleet/internal/pkg/errs"
)

// Role is the authorization role assigned by the identity provider.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
)

// ParseRole accepts the role names issued in access tokens, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleCustomer, RoleDriver:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
	}
}

func (r Role) String() string { return string(r) }

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   UUID
	Role Role
}

func NewActor(id UUID, role Role) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	if _, err := ParseRole(string(role)); err != nil {
		return Actor{}, err
	}
	return Actor{ID: id, Role: role}, nil
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

func (a Actor) IsCustomer() bool { return a.Role == RoleCustomer }

func (a Actor) IsDriver() bool { return a.Role == RoleDriver }

// HasAnyRole reports whether the actor holds one of roles.
func (a Actor) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

func (a Actor) Validate() error {
	if err := a.ID.Validate(); err != nil {
		return err
	}
	_, err := ParseRole(string(a.Role))
	return err
}
