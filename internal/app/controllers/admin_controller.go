package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/app/models/dto"
	"github.com/yigit/careernest/internal/middleware"
	"github.com/yigit/careernest/internal/pkg/apperrors"
	"github.com/yigit/careernest/internal/pkg/helpers"
)

// AdminController serves the review queue for Faculty and Alumni proofs
type AdminController struct {
	admin  ProfileReviewer
	logger zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(admin ProfileReviewer, logger zerolog.Logger) *AdminController {
	return &AdminController{admin: admin, logger: logger}
}

// ListPending lists profiles awaiting review
// GET /admin/profiles/pending?page=&size=
func (c *AdminController) ListPending(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	resp, err := c.admin.ListPending(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// Approve approves a profile awaiting review
// POST /admin/profiles/:userId/approve
func (c *AdminController) Approve(ctx *gin.Context) {
	c.decide(ctx, c.admin.Approve, models.StatusApproved)
}

// Reject rejects a profile awaiting review
// POST /admin/profiles/:userId/reject
func (c *AdminController) Reject(ctx *gin.Context) {
	c.decide(ctx, c.admin.Reject, models.StatusRejected)
}

func (c *AdminController) decide(ctx *gin.Context, apply func(context.Context, uuid.UUID) error, to models.ProfileStatus) {
	id, err := uuid.Parse(ctx.Param("userId"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewResourceNotFoundError("Profile not found"))
		return
	}

	if err := apply(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("adminID", middleware.UserID(ctx).String()).
		Str("userID", id.String()).
		Str("status", string(to)).
		Msg("Profile review decided")
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.StatusChangeResponse{UserID: id.String(), Status: to}})
}
