// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models/dto"
	"github.com/yigit/careernest/internal/app/services"
	"github.com/yigit/careernest/internal/middleware"
)

// authFailedRedirect is where a failed code exchange lands
const authFailedRedirect = services.PathLogin + "?error=auth_failed"

// AuthController handles authentication related operations
type AuthController struct {
	authService AuthFlows
	session     *middleware.SessionAuth
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService AuthFlows, session *middleware.SessionAuth, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		session:     session,
		logger:      logger,
	}
}

// Signup creates an account and signs it in
// POST /auth/signup
func (c *AuthController) Signup(ctx *gin.Context) {
	var req dto.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid signup request payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	result, err := c.authService.Signup(ctx.Request.Context(), services.SignupInput{
		FullName:        req.FullName,
		Role:            req.Role,
		CollegeID:       req.CollegeID,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("role", req.Role).Msg("Signup failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.session.SetSessionCookie(ctx, result.Session)
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: sessionResponse(result)})
}

// Login handles user login
// POST /auth/login
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login request payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	result, err := c.authService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.session.SetSessionCookie(ctx, result.Session)
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: sessionResponse(result)})
}

// Logout clears the session cookie
// POST /auth/logout
func (c *AuthController) Logout(ctx *gin.Context) {
	c.session.ClearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.RedirectResponse{Next: services.PathLogin, Message: "Signed out"}})
}

// ForgotPassword emails a sign-in link. It answers 200 whether or not the
// address is registered.
// POST /auth/forgot-password
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.authService.ForgotPassword(ctx.Request.Context(), req.Email, req.RedirectTo); err != nil {
		c.logger.Error().Err(err).Msg("Password reset request failed")
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SuccessResponse{Message: "If the address is registered, a sign-in link has been sent."},
	})
}

// Callback exchanges a one-time code for a session and redirects to next
// GET /auth/callback?code=&next=
func (c *AuthController) Callback(ctx *gin.Context) {
	result, err := c.authService.ExchangeCode(ctx.Request.Context(), ctx.Query("code"))
	if err != nil {
		c.logger.Warn().Err(err).Msg("Auth code exchange failed")
		ctx.Redirect(http.StatusFound, authFailedRedirect)
		return
	}

	c.session.SetSessionCookie(ctx, result.Session)
	ctx.Redirect(http.StatusFound, services.SafeNext(ctx.Query("next"), services.PathHome))
}

// UpdatePassword sets a new password for the signed-in account
// POST /auth/update-password
func (c *AuthController) UpdatePassword(ctx *gin.Context) {
	var req dto.UpdatePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	err := c.authService.UpdatePassword(ctx.Request.Context(), middleware.UserID(ctx), req.Password, req.ConfirmPassword)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.RedirectResponse{Next: services.PathHome, Message: "Password updated"}})
}

func sessionResponse(result *services.AuthResult) dto.SessionResponse {
	return dto.SessionResponse{
		AccessToken: result.Session.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(result.Session.ExpiresAt).Seconds()),
		User:        dto.NewUserResponse(result.Account),
		Next:        result.Next,
	}
}
