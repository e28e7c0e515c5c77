package dto

import (
	"github.com/google/uuid"

	"github.com/yigit/careernest/internal/app/models"
)

// VerificationFormRequest is the multipart form of POST /id-verification.
// Which fields are required depends on the account's role, so binding only
// checks shapes here.
type VerificationFormRequest struct {
	CollegeID      *int64 `form:"college_id" binding:"omitempty,min=1"`
	DepartmentID   *int64 `form:"department_id" binding:"omitempty,min=1"`
	GraduationYear *int   `form:"graduation_year" binding:"omitempty"`
	OfficialEmail  string `form:"official_email" binding:"omitempty,email"`
	PersonalEmail  string `form:"personal_email" binding:"omitempty,email"`
}

// VerificationFormResponse describes the form the account must fill in
type VerificationFormResponse struct {
	Role           models.Role          `json:"role"`
	Status         models.ProfileStatus `json:"status"`
	RequiredFields []string             `json:"requiredFields"`
	RequiresIDDoc  bool                 `json:"requiresIdDocument"`
	Colleges       []models.College     `json:"colleges"`
	Departments    []models.Department  `json:"departments"`
}

// VerificationSubmitResponse reports what happened to a submission
type VerificationSubmitResponse struct {
	Status  models.ProfileStatus `json:"status"`
	Message string               `json:"message"`
	Next    string               `json:"next,omitempty"`
}

// PendingApprovalResponse is the notice shown while an admin reviews
type PendingApprovalResponse struct {
	Status  models.ProfileStatus `json:"status"`
	Message string               `json:"message"`
}

// SendVerificationEmailRequest is the body of the email function
type SendVerificationEmailRequest struct {
	UserID        string `json:"user_id"`
	OfficialEmail string `json:"official_email"`
}

// FunctionSuccess is the email function's success body
type FunctionSuccess struct {
	Success bool `json:"success"`
}

// FunctionError is the email function's error body
type FunctionError struct {
	Error string `json:"error"`
}

// ParsedUserID returns the request's user id, or uuid.Nil if it is malformed
func (r SendVerificationEmailRequest) ParsedUserID() uuid.UUID {
	id, err := uuid.Parse(r.UserID)
	if err != nil {
		return uuid.Nil
	}
	return id
}
