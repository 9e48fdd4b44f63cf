package domain

import (
	"strings"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

// UserRole enumerates account roles.
type UserRole string

const (
	RoleCitizen UserRole = "CITIZEN"
	RoleStaff   UserRole = "STAFF"
	RoleAdmin   UserRole = "ADMIN"
)

// ParseUserRole accepts any casing and surrounding whitespace.
func ParseUserRole(raw string) (UserRole, error) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", apperrors.NewValidationError("unknown role", map[string]any{"role": raw})
	}
	return role, nil
}

func (r UserRole) Valid() bool {
	switch r {
	case RoleCitizen, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// IsPrivileged reports whether the role belongs to municipal personnel.
func (r UserRole) IsPrivileged() bool {
	return r == RoleStaff || r == RoleAdmin
}
