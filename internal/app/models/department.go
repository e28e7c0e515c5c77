package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// College is a reference entity used by the verification forms
type College struct {
	ID                 int64   `json:"id" db:"id"`
	Name               string  `json:"name" db:"name"`
	VerificationDomain *string `json:"verificationDomain,omitempty" db:"verification_domain"`
}

// Domain returns the configured verification domain without a leading '@'
func (c *College) Domain() string {
	if c == nil || c.VerificationDomain == nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(*c.VerificationDomain)), "@")
}

// Department is a reference entity, optionally scoped to a college
type Department struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	CollegeID *int64 `json:"collegeId,omitempty" db:"college_id"`
}

// VerificationToken links a pending account to a single-use emailed secret.
// It lives in the 'college_verifications' table.
type VerificationToken struct {
	Token         string    `json:"-" db:"token"`
	UserID        uuid.UUID `json:"userId" db:"user_id"`
	OfficialEmail string    `json:"officialEmail" db:"official_email"`
	ExpiresAt     time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// Expired reports whether the token can no longer be redeemed at now
func (t *VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// CollegeOnboardingRequest is a request from a college contact to join
type CollegeOnboardingRequest struct {
	ID           int64     `json:"id" db:"id"`
	CollegeName  string    `json:"collegeName" db:"college_name"`
	ContactName  string    `json:"contactName" db:"contact_name"`
	ContactEmail string    `json:"contactEmail" db:"contact_email"`
	ContactRole  string    `json:"contactRole" db:"contact_role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
