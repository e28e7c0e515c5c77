package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/app/models/dto"
	"github.com/yigit/careernest/internal/app/services"
	"github.com/yigit/careernest/internal/middleware"
	"github.com/yigit/careernest/internal/pkg/apperrors"
)

// idProofField is the multipart field carrying the identity document
const idProofField = "id_proof"

// multipartOverhead is allowed on top of the document size for the other
// form fields and the multipart framing
const multipartOverhead = 1 << 20

// VerificationController serves the verification form, the pending approval
// notice and the emailed verification link
type VerificationController struct {
	verification Submitter
	tokens       TokenIssuer
	gate         middleware.GateChecker
	lookups      Lookups
	maxUpload    int64
	logger       zerolog.Logger
}

// NewVerificationController creates a new VerificationController
func NewVerificationController(
	verification Submitter,
	tokens TokenIssuer,
	gate middleware.GateChecker,
	lookups Lookups,
	maxUpload int64,
	logger zerolog.Logger,
) *VerificationController {
	if maxUpload <= 0 {
		maxUpload = services.DefaultMaxDocumentSize
	}
	return &VerificationController{
		verification: verification,
		tokens:       tokens,
		gate:         gate,
		lookups:      lookups,
		maxUpload:    maxUpload,
		logger:       logger,
	}
}

// Form describes the verification form for the signed-in account
// GET /id-verification
func (c *VerificationController) Form(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	if userID == uuid.Nil {
		ctx.Redirect(http.StatusFound, services.PathLogin)
		return
	}

	decision := c.gate.Check(ctx.Request.Context(), userID)
	profile := decision.Profile
	if profile == nil {
		middleware.HandleAPIError(ctx, apperrors.ErrProfileNotFound)
		return
	}

	switch profile.Status {
	case models.StatusPendingVerification, models.StatusRejected:
	default:
		ctx.Redirect(http.StatusFound, formRedirect(decision))
		return
	}

	colleges, err := c.lookups.Colleges(ctx.Request.Context(), "")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	departments, err := c.lookups.Departments(ctx.Request.Context(), profile.CollegeID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.VerificationFormResponse{
		Role:           profile.Role,
		Status:         profile.Status,
		RequiredFields: services.RequiredFields(profile.Role),
		RequiresIDDoc:  services.RequiresDocument(profile.Role),
		Colleges:       colleges,
		Departments:    departments,
	}})
}

// Submit applies the verification form for the signed-in account. The role
// comes from the session, never from the form.
// POST /id-verification
func (c *VerificationController) Submit(ctx *gin.Context) {
	userID := middleware.UserID(ctx)
	role := middleware.Role(ctx)

	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUpload+multipartOverhead)

	var req dto.VerificationFormRequest
	if err := ctx.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.HandleAPIError(ctx, apperrors.ErrDocumentTooLarge)
			return
		}
		c.logger.Warn().Err(err).Msg("Invalid verification form")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	doc, closeDoc, err := c.document(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer closeDoc()

	sub, err := buildSubmission(role, &req, doc)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := c.verification.Submit(ctx.Request.Context(), userID, role, sub)
	if err != nil {
		c.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Verification submission rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := dto.VerificationSubmitResponse{Status: result.Status}
	if result.Status == models.StatusPendingAdminApproval {
		resp.Message = "Your document was received and is awaiting review."
		resp.Next = services.PathPendingApproval
	} else {
		resp.Message = "A verification link has been sent to your official email."
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// PendingApproval shows the review notice, or redirects any other status to
// where the verification gate would send it
// GET /pending-approval
func (c *VerificationController) PendingApproval(ctx *gin.Context) {
	decision := c.gate.Check(ctx.Request.Context(), middleware.UserID(ctx))
	if decision.Profile == nil || decision.Profile.Status != models.StatusPendingAdminApproval {
		ctx.Redirect(http.StatusFound, formRedirect(decision))
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.PendingApprovalResponse{
		Status:  decision.Profile.Status,
		Message: "Your verification is being reviewed. You will be able to sign in once an administrator approves it.",
	}})
}

// VerifyCollegeEmail redeems an emailed verification link
// GET /auth/verify-college-email?token=
func (c *VerificationController) VerifyCollegeEmail(ctx *gin.Context) {
	outcome, err := c.tokens.Redeem(ctx.Request.Context(), ctx.Query("token"))
	if err != nil {
		c.logger.Info().Err(err).Str("outcome", string(outcome)).Msg("Verification link not redeemed")
	}
	ctx.Redirect(http.StatusFound, outcome.Redirect())
}

// document opens the uploaded identity document, if any
func (c *VerificationController) document(ctx *gin.Context) (*services.Document, func(), error) {
	header, err := ctx.FormFile(idProofField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, nil, apperrors.NewBadRequestError("could not read the identity document")
	}

	f, err := header.Open()
	if err != nil {
		return nil, nil, apperrors.NewBadRequestError("could not read the identity document")
	}
	return &services.Document{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     f,
	}, func() { _ = f.Close() }, nil
}

// buildSubmission maps the form onto the submission variant of role
func buildSubmission(role models.Role, req *dto.VerificationFormRequest, doc *services.Document) (services.Submission, error) {
	collegeID := derefInt64(req.CollegeID)
	departmentID := derefInt64(req.DepartmentID)
	graduationYear := 0
	if req.GraduationYear != nil {
		graduationYear = *req.GraduationYear
	}

	switch role {
	case models.RoleStudent:
		return services.StudentSubmission{
			CollegeID:      collegeID,
			DepartmentID:   departmentID,
			GraduationYear: graduationYear,
			OfficialEmail:  req.OfficialEmail,
			PersonalEmail:  req.PersonalEmail,
		}, nil
	case models.RoleFaculty:
		return services.FacultySubmission{
			DepartmentID:  departmentID,
			OfficialEmail: req.OfficialEmail,
			PersonalEmail: req.PersonalEmail,
			IDProof:       doc,
		}, nil
	case models.RoleAlumni:
		return services.AlumniSubmission{
			CollegeID:      collegeID,
			DepartmentID:   departmentID,
			GraduationYear: graduationYear,
			OfficialEmail:  req.OfficialEmail,
			PersonalEmail:  req.PersonalEmail,
			IDProof:        doc,
		}, nil
	}
	return nil, apperrors.ErrInvalidRole
}

// formRedirect is where the verification pages send a profile that may not
// see them
func formRedirect(d services.GateDecision) string {
	if d.Allow {
		return services.PathHome
	}
	return d.Redirect
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
