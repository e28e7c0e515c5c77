package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models/dto"
	"github.com/yigit/careernest/internal/app/services"
	"github.com/yigit/careernest/internal/middleware"
	"github.com/yigit/careernest/internal/pkg/apperrors"
)

// PageController serves the pages behind the verification gate
type PageController struct {
	pages  PageBuilder
	logger zerolog.Logger
}

// NewPageController creates a new PageController
func NewPageController(pages PageBuilder, logger zerolog.Logger) *PageController {
	return &PageController{pages: pages, logger: logger}
}

// Home returns the feed shell
// GET /home?tab=
func (c *PageController) Home(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: c.pages.Home(middleware.Profile(ctx), ctx.Query("tab"))})
}

// Network returns directory suggestions
// GET /network?q=
func (c *PageController) Network(ctx *gin.Context) {
	resp, err := c.pages.Network(ctx.Request.Context(), middleware.UserID(ctx), ctx.Query("q"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// Messages returns the messaging shell
// GET /messages
func (c *PageController) Messages(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: c.pages.Messages()})
}

// OwnProfile returns the viewer's profile
// GET /profile
func (c *PageController) OwnProfile(ctx *gin.Context) {
	resp, err := c.pages.Own(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}

// Profile returns another user's profile. The viewer's own id redirects to
// /profile.
// GET /profile/:userId
func (c *PageController) Profile(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("userId"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewResourceNotFoundError("Profile not found"))
		return
	}
	if id == middleware.UserID(ctx) {
		ctx.Redirect(http.StatusFound, services.PathProfile)
		return
	}

	resp, err := c.pages.ByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: resp})
}
