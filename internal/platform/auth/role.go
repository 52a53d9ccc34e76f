package auth

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the closed set of actor roles. Every request acts as exactly one.
type Role string

const (
	RolePatient  Role = "patient"
	RoleDoctor   Role = "doctor"
	RolePharmacy Role = "pharmacy"
)

// ParseRole validates a raw claim value against the closed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RolePharmacy:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Identity is the resolved caller: a user id and a single role.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}
