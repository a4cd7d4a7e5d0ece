package domain

import (
	"strings"
	"time"
)

// UserRole enumerates the access level of a user record.
type UserRole string

const (
	UserRoleAdmin     UserRole = "ADMIN"
	UserRoleUser      UserRole = "USER"
	UserRoleModerator UserRole = "MODERATOR"
)

var userRoles = []UserRole{UserRoleAdmin, UserRoleUser, UserRoleModerator}

// ParseUserRole matches s against the known roles ignoring case.
func ParseUserRole(s string) (UserRole, bool) {
	for _, role := range userRoles {
		if strings.EqualFold(string(role), strings.TrimSpace(s)) {
			return role, true
		}
	}
	return "", false
}

// User is a managed user record.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      UserRole
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserPatch carries the fields of a partial user update; nil fields are left untouched.
type UserPatch struct {
	Name  *string
	Email *string
	Role  *UserRole
}

// Apply merges the non-nil fields into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}
