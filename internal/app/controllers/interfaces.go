package controllers

import (
	"context"

	"github.com/google/uuid"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/app/models/dto"
	"github.com/yigit/careernest/internal/app/services"
)

// AuthFlows is the auth provider surface used by AuthController
type AuthFlows interface {
	Signup(ctx context.Context, in services.SignupInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	ForgotPassword(ctx context.Context, email, next string) error
	ExchangeCode(ctx context.Context, code string) (*services.AuthResult, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, password, confirm string) error
}

// TokenIssuer issues and redeems college email verification links
type TokenIssuer interface {
	Issue(ctx context.Context, userID uuid.UUID, officialEmail string) error
	Redeem(ctx context.Context, token string) (services.RedeemOutcome, error)
}

// Submitter applies verification form submissions
type Submitter interface {
	Submit(ctx context.Context, userID uuid.UUID, role models.Role, sub services.Submission) (*services.SubmitResult, error)
}

// PageBuilder builds the protected pages
type PageBuilder interface {
	Home(viewer *models.Profile, tab string) *dto.HomeResponse
	Network(ctx context.Context, viewerID uuid.UUID, query string) (*dto.NetworkResponse, error)
	Messages() *dto.MessagesResponse
	Own(ctx context.Context, viewerID uuid.UUID) (*dto.ProfileResponse, error)
	ByID(ctx context.Context, id uuid.UUID) (*dto.ProfileResponse, error)
}

// Lookups serves the public college and department lists
type Lookups interface {
	Colleges(ctx context.Context, query string) ([]models.College, error)
	Departments(ctx context.Context, collegeID *int64) ([]models.Department, error)
	RequestOnboarding(ctx context.Context, req *models.CollegeOnboardingRequest) error
}

// ProfileReviewer approves or rejects profiles awaiting review
type ProfileReviewer interface {
	ListPending(ctx context.Context, page, size int) (*dto.PendingProfilesResponse, error)
	Approve(ctx context.Context, userID uuid.UUID) error
	Reject(ctx context.Context, userID uuid.UUID) error
}
