package domain

import (
	"strings"
	"time"
)

// Role determines visibility and permitted actions.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleAgent Role = "AGENT"
	RoleUser  Role = "USER"
)

// ParseRole normalises raw input and reports whether it is one of the known roles.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	return role, role.Valid()
}

// Valid reports whether r is one of the persisted role values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleUser:
		return true
	}
	return false
}

// IsStaff reports whether the role can triage tickets and be assigned to them.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleAgent
}

// User is a registered account. PasswordHash never leaves the service layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// NormalizeEmail is applied before every lookup and insert keyed by email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
