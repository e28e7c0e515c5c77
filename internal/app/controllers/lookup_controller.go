package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/app/models/dto"
	"github.com/yigit/careernest/internal/middleware"
	"github.com/yigit/careernest/internal/pkg/apperrors"
)

// LookupController serves the public college and department lookups and
// the college onboarding form
type LookupController struct {
	lookups Lookups
	logger  zerolog.Logger
}

// NewLookupController creates a new LookupController
func NewLookupController(lookups Lookups, logger zerolog.Logger) *LookupController {
	return &LookupController{lookups: lookups, logger: logger}
}

// Colleges lists colleges
// GET /api/colleges?q=
func (c *LookupController) Colleges(ctx *gin.Context) {
	colleges, err := c.lookups.Colleges(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: colleges})
}

// Departments lists departments, optionally for one college
// GET /api/departments?college_id=
func (c *LookupController) Departments(ctx *gin.Context) {
	var collegeID *int64
	if raw := ctx.Query("college_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("college_id", "college_id must be a positive integer"))
			return
		}
		collegeID = &id
	}

	departments, err := c.lookups.Departments(ctx.Request.Context(), collegeID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: departments})
}

// RequestOnboarding stores a request from a college that wants to join
// POST /api/onboarding-requests
func (c *LookupController) RequestOnboarding(ctx *gin.Context) {
	var req dto.OnboardingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	record := &models.CollegeOnboardingRequest{
		CollegeName:  req.CollegeName,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactRole:  req.ContactRole,
	}
	if err := c.lookups.RequestOnboarding(ctx.Request.Context(), record); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: dto.OnboardingResponse{
		ID:      record.ID,
		Message: "Thanks! We will reach out to your college soon.",
	}})
}
