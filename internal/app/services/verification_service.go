package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/pkg/apperrors"
	"github.com/yigit/careernest/internal/pkg/filestorage"
	"github.com/yigit/careernest/internal/pkg/helpers"
	"github.com/yigit/careernest/internal/pkg/metrics"
	"github.com/yigit/careernest/internal/pkg/validation"
)

// Document upload limits
const (
	DefaultMaxDocumentSize = 5 << 20
	DefaultProofBucket     = "id-proofs"
)

var documentTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// Document is an uploaded identity proof
type Document struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// Submission is a role-specific verification form. The set of variants is
// closed: StudentSubmission, FacultySubmission and AlumniSubmission.
type Submission interface {
	Role() models.Role
	submission()
}

// StudentSubmission is verified by emailing the official address
type StudentSubmission struct {
	CollegeID      int64
	DepartmentID   int64
	GraduationYear int
	OfficialEmail  string
	PersonalEmail  string
}

// FacultySubmission is verified by an admin reviewing the uploaded proof
type FacultySubmission struct {
	DepartmentID  int64
	OfficialEmail string
	PersonalEmail string
	IDProof       *Document
}

// AlumniSubmission is verified by an admin reviewing the uploaded proof
type AlumniSubmission struct {
	CollegeID      int64
	DepartmentID   int64
	GraduationYear int
	OfficialEmail  string
	PersonalEmail  string
	IDProof        *Document
}

func (StudentSubmission) Role() models.Role { return models.RoleStudent }
func (FacultySubmission) Role() models.Role { return models.RoleFaculty }
func (AlumniSubmission) Role() models.Role { return models.RoleAlumni }

func (StudentSubmission) submission() {}
func (FacultySubmission) submission() {}
func (AlumniSubmission) submission() {}

// RequiredFields lists the form fields a role must fill in
func RequiredFields(role models.Role) []string {
	switch role {
	case models.RoleStudent:
		return []string{"college_id", "department_id", "graduation_year", "official_email"}
	case models.RoleFaculty:
		return []string{"department_id", "official_email", "id_proof"}
	case models.RoleAlumni:
		return []string{"college_id", "department_id", "graduation_year", "official_email", "id_proof"}
	}
	return nil
}

// RequiresDocument reports whether the role must upload an identity proof
func RequiresDocument(role models.Role) bool {
	return role == models.RoleFaculty || role == models.RoleAlumni
}

// SubmitResult reports the profile status after a submission
type SubmitResult struct {
	Status    models.ProfileStatus
	EmailSent bool
}

// VerificationConfig configures document handling
type VerificationConfig struct {
	Bucket        string
	MaxUploadSize int64
}

// VerificationService handles role-specific verification submissions
type VerificationService struct {
	profiles    ProfileStore
	colleges    CollegeStore
	departments DepartmentStore
	tokens      *TokenService
	storage     filestorage.Storage
	config      VerificationConfig
	clock       helpers.Clock
	metrics     metrics.Recorder
	logger      zerolog.Logger
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(
	profiles ProfileStore,
	colleges CollegeStore,
	departments DepartmentStore,
	tokens *TokenService,
	storage filestorage.Storage,
	config VerificationConfig,
	clock helpers.Clock,
	recorder metrics.Recorder,
	logger zerolog.Logger,
) *VerificationService {
	if config.Bucket == "" {
		config.Bucket = DefaultProofBucket
	}
	if config.MaxUploadSize <= 0 {
		config.MaxUploadSize = DefaultMaxDocumentSize
	}
	return &VerificationService{
		profiles:    profiles,
		colleges:    colleges,
		departments: departments,
		tokens:      tokens,
		storage:     storage,
		config:      config,
		clock:       clock,
		metrics:     recorder,
		logger:      logger,
	}
}

// Submit validates and applies a verification form for the account. The
// submission variant must match the account's role.
func (s *VerificationService) Submit(ctx context.Context, userID uuid.UUID, role models.Role, sub Submission) (*SubmitResult, error) {
	if sub == nil || sub.Role() != role {
		return nil, apperrors.NewValidationError("role", "submission does not match the account role")
	}
	if err := s.validate(ctx, sub); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.Status.AcceptsSubmission() {
		return nil, fmt.Errorf("%w: profile is %s", apperrors.ErrVerificationNotAllowed, profile.Status)
	}

	var result *SubmitResult
	switch v := sub.(type) {
	case StudentSubmission:
		result, err = s.submitStudent(ctx, userID, v)
	case FacultySubmission:
		result, err = s.submitForReview(ctx, userID, models.AffiliationUpdate{
			DepartmentID:  &v.DepartmentID,
			OfficialEmail: normalized(v.OfficialEmail),
			PersonalEmail: normalized(v.PersonalEmail),
		}, v.IDProof)
	case AlumniSubmission:
		result, err = s.submitForReview(ctx, userID, models.AffiliationUpdate{
			CollegeID:      &v.CollegeID,
			DepartmentID:   &v.DepartmentID,
			GraduationYear: &v.GraduationYear,
			OfficialEmail:  normalized(v.OfficialEmail),
			PersonalEmail:  normalized(v.PersonalEmail),
		}, v.IDProof)
	default:
		return nil, apperrors.ErrInvalidRole
	}
	if err != nil {
		return nil, err
	}

	s.metrics.SubmissionAccepted(string(role), string(result.Status))
	s.logger.Info().
		Str("userID", userID.String()).
		Str("role", string(role)).
		Str("status", string(result.Status)).
		Msg("Verification form submitted")
	return result, nil
}

// validate runs every check that needs no mutation. It returns before any
// storage, profile or email call is made.
func (s *VerificationService) validate(ctx context.Context, sub Submission) error {
	now := s.clock()
	switch v := sub.(type) {
	case StudentSubmission:
		if err := requireAffiliation(v.CollegeID, v.DepartmentID, v.GraduationYear, now.Year()); err != nil {
			return err
		}
		if err := requireEmails(v.OfficialEmail, v.PersonalEmail); err != nil {
			return err
		}
		college, err := s.colleges.GetByID(ctx, v.CollegeID)
		if err != nil {
			return err
		}
		if err := s.checkDepartment(ctx, v.DepartmentID, &v.CollegeID); err != nil {
			return err
		}
		if domain := college.Domain(); domain != "" && !validation.DomainMatches(v.OfficialEmail, domain) {
			return apperrors.NewCustomError(apperrors.ErrEmailDomainMismatch,
				fmt.Sprintf("Official email must belong to %s", domain)).
				WithDetails(map[string]interface{}{"field": "official_email"})
		}
		return nil

	case FacultySubmission:
		if err := s.checkDocument(v.IDProof); err != nil {
			return err
		}
		if v.DepartmentID <= 0 {
			return apperrors.NewValidationError("department_id", "department_id is required")
		}
		if err := requireEmails(v.OfficialEmail, v.PersonalEmail); err != nil {
			return err
		}
		return s.checkDepartment(ctx, v.DepartmentID, nil)

	case AlumniSubmission:
		if err := s.checkDocument(v.IDProof); err != nil {
			return err
		}
		if err := requireAffiliation(v.CollegeID, v.DepartmentID, v.GraduationYear, now.Year()); err != nil {
			return err
		}
		if err := requireEmails(v.OfficialEmail, v.PersonalEmail); err != nil {
			return err
		}
		if _, err := s.colleges.GetByID(ctx, v.CollegeID); err != nil {
			return err
		}
		return s.checkDepartment(ctx, v.DepartmentID, &v.CollegeID)
	}
	return apperrors.ErrInvalidRole
}

func (s *VerificationService) checkDepartment(ctx context.Context, departmentID int64, collegeID *int64) error {
	dept, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		return err
	}
	if collegeID != nil && dept.CollegeID != nil && *dept.CollegeID != *collegeID {
		return apperrors.NewValidationError("department_id", "department does not belong to the selected college")
	}
	return nil
}

func (s *VerificationService) checkDocument(doc *Document) error {
	if doc == nil || doc.Body == nil || doc.Size == 0 {
		return apperrors.ErrDocumentRequired
	}
	if doc.Size > s.config.MaxUploadSize {
		return fmt.Errorf("%w: limit is %d bytes", apperrors.ErrDocumentTooLarge, s.config.MaxUploadSize)
	}
	if _, ok := documentTypes[documentExt(doc.Filename)]; !ok {
		return apperrors.ErrUnsupportedDocumentType
	}
	return nil
}

func (s *VerificationService) submitStudent(ctx context.Context, userID uuid.UUID, v StudentSubmission) (*SubmitResult, error) {
	status := models.StatusPendingVerification
	err := s.profiles.UpdateAffiliation(ctx, userID, models.AffiliationUpdate{
		CollegeID:      &v.CollegeID,
		DepartmentID:   &v.DepartmentID,
		GraduationYear: &v.GraduationYear,
		PersonalEmail:  normalized(v.PersonalEmail),
		Status:         &status,
	})
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Issue(ctx, userID, v.OfficialEmail); err != nil {
		return nil, err
	}
	return &SubmitResult{Status: status, EmailSent: true}, nil
}

// submitForReview uploads the proof and moves the profile to admin review.
// If the profile update fails the uploaded object is deleted again.
func (s *VerificationService) submitForReview(ctx context.Context, userID uuid.UUID, update models.AffiliationUpdate, doc *Document) (*SubmitResult, error) {
	ext := documentExt(doc.Filename)
	key := path.Join(userID.String(), "id_proof"+ext)

	ref, err := s.storage.Upload(ctx, filestorage.Object{
		Bucket:      s.config.Bucket,
		Key:         key,
		Body:        doc.Body,
		Size:        doc.Size,
		ContentType: documentTypes[ext],
	})
	if err != nil {
		s.logger.Error().Err(err).Str("userID", userID.String()).Msg("Failed to upload identity document")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageFailed, err)
	}

	status := models.StatusPendingAdminApproval
	update.IDProofURL = &ref
	update.Status = &status

	if err := s.profiles.UpdateAffiliation(ctx, userID, update); err != nil {
		// cleanup runs even if the request was cancelled
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), s.config.Bucket, key); delErr != nil {
			s.logger.Error().Err(delErr).Str("key", key).Msg("Failed to delete orphaned identity document")
		}
		return nil, err
	}
	return &SubmitResult{Status: status}, nil
}

func requireAffiliation(collegeID, departmentID int64, graduationYear, year int) error {
	if collegeID <= 0 {
		return apperrors.NewValidationError("college_id", "college_id is required")
	}
	if departmentID <= 0 {
		return apperrors.NewValidationError("department_id", "department_id is required")
	}
	if graduationYear == 0 {
		return apperrors.NewValidationError("graduation_year", "graduation_year is required")
	}
	if graduationYear < validation.MinGraduationYear || graduationYear > year+validation.GraduationYearAhead {
		return apperrors.NewValidationError("graduation_year",
			fmt.Sprintf("graduation_year must be between %d and %d", validation.MinGraduationYear, year+validation.GraduationYearAhead))
	}
	return nil
}

func requireEmails(official, personal string) error {
	if strings.TrimSpace(official) == "" {
		return apperrors.NewValidationError("official_email", "official_email is required")
	}
	if !validation.IsValidEmail(official) {
		return apperrors.NewValidationError("official_email", "official_email must be a valid email address")
	}
	if personal != "" && !validation.IsValidEmail(personal) {
		return apperrors.NewValidationError("personal_email", "personal_email must be a valid email address")
	}
	return nil
}

func documentExt(filename string) string {
	return strings.ToLower(path.Ext(filename))
}

func normalized(email string) *string {
	email = validation.NormalizeEmail(email)
	if email == "" {
		return nil
	}
	return &email
}
