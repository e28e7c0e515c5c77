package models

import (
	"fmt"
	"strings"
)

// Role is the affiliation an account declares at signup. The set is closed:
// every switch over Role is expected to cover all three values.
type Role string

const (
	RoleStudent Role = "Student"
	RoleFaculty Role = "Faculty"
	RoleAlumni  Role = "Alumni"
)

// Roles lists every valid role in display order
var Roles = []Role{RoleStudent, RoleFaculty, RoleAlumni}

// ParseRole accepts a role name case-insensitively
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the declared roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAlumni:
		return true
	}
	return false
}

// ProfileStatus gates access to the protected pages
type ProfileStatus string

const (
	StatusPendingVerification  ProfileStatus = "pending_verification"
	StatusPendingAdminApproval ProfileStatus = "pending_admin_approval"
	StatusApproved             ProfileStatus = "approved"
	StatusRejected             ProfileStatus = "rejected"
)

// Valid reports whether s is a known status
func (s ProfileStatus) Valid() bool {
	switch s {
	case StatusPendingVerification, StatusPendingAdminApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// AcceptsSubmission reports whether a verification form may be submitted
// from this status. Rejected profiles may try again.
func (s ProfileStatus) AcceptsSubmission() bool {
	return s == StatusPendingVerification || s == StatusRejected
}
