package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models/dto"
	"github.com/yigit/careernest/internal/middleware"
	"github.com/yigit/careernest/internal/pkg/apperrors"
)

// FunctionController serves the student-verify-email function. Its bodies
// are {"success": true} or {"error": "..."} rather than the API envelope.
type FunctionController struct {
	tokens TokenIssuer
	logger zerolog.Logger
}

// NewFunctionController creates a new FunctionController
func NewFunctionController(tokens TokenIssuer, logger zerolog.Logger) *FunctionController {
	return &FunctionController{tokens: tokens, logger: logger}
}

// SendVerificationEmail issues a verification token for the caller and
// emails the link to the official address
// POST /functions/v1/student-verify-email
func (c *FunctionController) SendVerificationEmail(ctx *gin.Context) {
	callerID := middleware.UserID(ctx)
	if callerID == uuid.Nil {
		ctx.JSON(http.StatusUnauthorized, dto.FunctionError{Error: "Authentication required"})
		return
	}

	var req dto.SendVerificationEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.FunctionError{Error: "Invalid request body"})
		return
	}
	if req.UserID == "" || req.OfficialEmail == "" {
		ctx.JSON(http.StatusBadRequest, dto.FunctionError{Error: apperrors.ErrMissingVerificationFields.Error()})
		return
	}
	if req.ParsedUserID() != callerID {
		c.logger.Warn().Str("callerID", callerID.String()).Str("userID", req.UserID).Msg("Verification email requested for another user")
		ctx.JSON(http.StatusForbidden, dto.FunctionError{Error: "user_id does not match the signed-in user"})
		return
	}

	if err := c.tokens.Issue(ctx.Request.Context(), callerID, req.OfficialEmail); err != nil {
		status, msg := functionError(err)
		ctx.JSON(status, dto.FunctionError{Error: msg})
		return
	}

	ctx.JSON(http.StatusOK, dto.FunctionSuccess{Success: true})
}

func functionError(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrMissingVerificationFields):
		return http.StatusBadRequest, apperrors.ErrMissingVerificationFields.Error()
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrEmailDomainMismatch):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrVerificationNotAllowed):
		return http.StatusConflict, "Email verification is not available for this profile"
	case errors.Is(err, apperrors.ErrProfileNotFound):
		return http.StatusNotFound, apperrors.ErrProfileNotFound.Error()
	case errors.Is(err, apperrors.ErrEmailDelivery):
		return http.StatusInternalServerError, "Failed to send verification email"
	default:
		return http.StatusInternalServerError, "Failed to store verification token"
	}
}
