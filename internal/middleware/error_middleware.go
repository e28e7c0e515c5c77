package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/careernest/internal/app/models/dto"
	"github.com/yigit/careernest/internal/pkg/apperrors"
	"github.com/yigit/careernest/internal/pkg/logger"
)

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.JSON(status, dto.APIResponse{Error: detail})
}

// ErrorDetailFor maps an application error onto an HTTP status and error detail
func ErrorDetailFor(err error) (int, *dto.ErrorDetail) {
	switch {
	// Verification workflow
	case errors.Is(err, apperrors.ErrEmailDomainMismatch):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeDomainMismatch, message(err, "Official email domain does not match the selected college")).WithField("official_email")
	case errors.Is(err, apperrors.ErrDocumentRequired):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeDocumentRequired, "An identity document is required").WithField("id_proof")
	case errors.Is(err, apperrors.ErrDocumentTooLarge):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeDocumentInvalid, "Identity document is too large").WithField("id_proof")
	case errors.Is(err, apperrors.ErrUnsupportedDocumentType):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeDocumentInvalid, "Identity document must be a PDF or an image").WithField("id_proof")
	case errors.Is(err, apperrors.ErrVerificationNotAllowed):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeStatusNotAllowed, "Verification is not allowed in the current status")
	case errors.Is(err, apperrors.ErrInvalidStatusTransition):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeInvalidTransition, "Profile is not awaiting review")
	case errors.Is(err, apperrors.ErrMissingVerificationFields):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "user_id and official_email are required")
	case errors.Is(err, apperrors.ErrVerificationLinkInvalid):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid verification link")

	// Rate limiting
	case errors.Is(err, apperrors.ErrTooManyRequests):
		return http.StatusTooManyRequests, dto.NewErrorDetail(dto.ErrorCodeRateLimited, "Too many requests, please try again later")

	// Validation
	case errors.Is(err, apperrors.ErrValidationFailed):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message(err, "Validation failed"))
		var ce *apperrors.CustomError
		if errors.As(err, &ce) && ce.Field() != "" {
			detail = detail.WithField(ce.Field())
		}
		return http.StatusBadRequest, detail
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodePasswordMismatch, "Passwords do not match").WithField("confirm_password")
	case errors.Is(err, apperrors.ErrInvalidPassword):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidPassword, message(err, "Invalid password")).WithField("password")
	case errors.Is(err, apperrors.ErrInvalidEmail):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidEmail, "Invalid email").WithField("email")
	case errors.Is(err, apperrors.ErrInvalidRole):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid role").WithField("role")
	case errors.Is(err, apperrors.ErrCollegeNotFound):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, "Unknown college").WithField("college_id")
	case errors.Is(err, apperrors.ErrDepartmentNotFound):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, "Unknown department").WithField("department_id")
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, message(err, "Bad request"))

	// Resources
	case apperrors.Is(err, apperrors.ErrResourceNotFound, apperrors.ErrProfileNotFound, apperrors.ErrUserNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message(err, "Resource not found"))
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already exists").WithField("email")
	case apperrors.Is(err, apperrors.ErrResourceAlreadyExists, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Resource already exists")

	// Authentication and authorization
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
	case errors.Is(err, apperrors.ErrInvalidAuthCode):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid or expired auth code")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, message(err, "Permission denied"))

	// Providers
	case apperrors.Is(err, apperrors.ErrStorageFailed, apperrors.ErrEmailDelivery):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, providerMessage(err))

	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// message returns the message of a CustomError, or fallback
func message(err error, fallback string) string {
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}

func providerMessage(err error) string {
	if errors.Is(err, apperrors.ErrStorageFailed) {
		return "Failed to store the identity document"
	}
	return "Failed to send email"
}
