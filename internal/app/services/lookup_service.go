package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/pkg/apperrors"
	"github.com/yigit/careernest/internal/pkg/sanitize"
	"github.com/yigit/careernest/internal/pkg/validation"
)

// LookupService serves the public college and department lists and the
// onboarding request form
type LookupService struct {
	colleges    CollegeStore
	departments DepartmentStore
	onboarding  OnboardingStore
	logger      zerolog.Logger
}

// NewLookupService creates a new LookupService
func NewLookupService(colleges CollegeStore, departments DepartmentStore, onboarding OnboardingStore, logger zerolog.Logger) *LookupService {
	return &LookupService{colleges: colleges, departments: departments, onboarding: onboarding, logger: logger}
}

// Colleges lists colleges whose name matches query
func (s *LookupService) Colleges(ctx context.Context, query string) ([]models.College, error) {
	colleges, err := s.colleges.List(ctx, validation.TruncateQuery(query))
	if err != nil {
		return nil, err
	}
	if colleges == nil {
		colleges = []models.College{}
	}
	return colleges, nil
}

// Departments lists departments, scoped to a college when collegeID is set
func (s *LookupService) Departments(ctx context.Context, collegeID *int64) ([]models.Department, error) {
	departments, err := s.departments.List(ctx, collegeID)
	if err != nil {
		return nil, err
	}
	if departments == nil {
		departments = []models.Department{}
	}
	return departments, nil
}

// RequestOnboarding stores a request from a college that wants to join
func (s *LookupService) RequestOnboarding(ctx context.Context, req *models.CollegeOnboardingRequest) error {
	req.CollegeName = sanitize.Text(req.CollegeName)
	req.ContactName = sanitize.Text(req.ContactName)
	req.ContactRole = sanitize.Text(req.ContactRole)
	req.ContactEmail = validation.NormalizeEmail(req.ContactEmail)

	switch {
	case strings.TrimSpace(req.CollegeName) == "":
		return apperrors.NewValidationError("college_name", "college_name is required")
	case strings.TrimSpace(req.ContactName) == "":
		return apperrors.NewValidationError("contact_name", "contact_name is required")
	case !validation.IsValidEmail(req.ContactEmail):
		return apperrors.NewValidationError("contact_email", "contact_email must be a valid email address")
	}

	if err := s.onboarding.Create(ctx, req); err != nil {
		return err
	}
	s.logger.Info().Int64("requestID", req.ID).Str("college", req.CollegeName).Msg("College onboarding requested")
	return nil
}
