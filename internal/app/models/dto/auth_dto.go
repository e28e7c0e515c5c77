package dto

import (
	"github.com/google/uuid"

	"github.com/yigit/careernest/internal/app/models"
)

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	FullName        string `json:"full_name" binding:"required,min=2,max=100" example:"Asha Verma"`
	Role            string `json:"role" binding:"required,oneof=Student Faculty Alumni student faculty alumni" example:"Student"`
	CollegeID       *int64 `json:"college_id,omitempty" binding:"omitempty,min=1" example:"1"`
	Email           string `json:"email" binding:"required,email" example:"asha@gmail.com"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password
type ForgotPasswordRequest struct {
	Email      string `json:"email" binding:"required,email"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// UpdatePasswordRequest is the body of POST /auth/update-password
type UpdatePasswordRequest struct {
	Password        string `json:"password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

// SessionResponse is returned after signup and login. The JWT is also set
// as the session cookie.
type SessionResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64        `json:"expiresIn"`
	User        UserResponse `json:"user"`
	Next        string       `json:"next" example:"/id-verification"`
}

// UserResponse represents basic account information
type UserResponse struct {
	ID       uuid.UUID   `json:"id"`
	Email    string      `json:"email"`
	FullName string      `json:"fullName"`
	Role     models.Role `json:"role"`
	IsAdmin  bool        `json:"isAdmin,omitempty"`
}

// NewUserResponse converts an account for the wire
func NewUserResponse(a *models.Account) UserResponse {
	return UserResponse{
		ID:       a.ID,
		Email:    a.Email,
		FullName: a.FullName,
		Role:     a.Role,
		IsAdmin:  a.IsAdmin,
	}
}
