package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/app/models/dto"
	"github.com/yigit/careernest/internal/pkg/apperrors"
	"github.com/yigit/careernest/internal/pkg/auth"
	"github.com/yigit/careernest/internal/pkg/logger"
)

// DefaultSessionCookie is the cookie carrying the session token
const DefaultSessionCookie = "careernest_session"

// SessionAuth resolves the session of each request from the session cookie
// or an Authorization bearer token
type SessionAuth struct {
	jwtService *auth.JWTService
	cookie     CookieConfig
	accounts   AccountLookup
}

// AccountLookup loads the current account record
type AccountLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
	Domain string
}

// NewSessionAuth creates a new SessionAuth
func NewSessionAuth(jwtService *auth.JWTService, cookie CookieConfig) *SessionAuth {
	if cookie.Name == "" {
		cookie.Name = DefaultSessionCookie
	}
	return &SessionAuth{
		jwtService: jwtService,
		cookie:     cookie,
	}
}

// WithAccounts makes RequireAdmin read the admin flag from the account
// record instead of the session claims, so revoking or granting admin takes
// effect without a new login.
func (m *SessionAuth) WithAccounts(accounts AccountLookup) *SessionAuth {
	m.accounts = accounts
	return m
}

// Resolve puts the session claims into the context when a valid token is
// present. It never aborts: pages let the verification gate redirect and API
// routes chain RequireSession.
func (m *SessionAuth) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := m.tokenFromRequest(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			c.Set(contextKeySessionError, err)
			c.Next()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// RequireSession aborts with 401 unless Resolve found a valid session
func (m *SessionAuth) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextKeyUserID); exists {
			c.Next()
			return
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		if v, ok := c.Get(contextKeySessionError); ok {
			err, _ := v.(error)
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				errorDetail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Authentication failed").WithDetails("Session has expired")
			default:
				errorDetail = dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication failed").WithDetails("Invalid session token")
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
	}
}

// RequireAdmin aborts with 403 unless the session belongs to an admin
func (m *SessionAuth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin := IsAdmin(c)
		if m.accounts != nil {
			account, err := m.accounts.GetByID(c.Request.Context(), UserID(c))
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				isAdmin = false
			case err != nil:
				logger.Error().Err(err).Str("userID", UserID(c).String()).Msg("Failed to load account for admin check")
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
				return
			default:
				isAdmin = account.IsAdmin
			}
			c.Set(ContextKeyIsAdmin, isAdmin)
		}

		if !isAdmin {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}

// SetSessionCookie writes the session cookie for a freshly issued session
func (m *SessionAuth) SetSessionCookie(c *gin.Context, session *auth.Session) {
	maxAge := int(m.jwtService.SessionDuration().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, session.Token, maxAge, "/", m.cookie.Domain, m.cookie.Secure, true)
}

// ClearSessionCookie expires the session cookie
func (m *SessionAuth) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, "", -1, "/", m.cookie.Domain, m.cookie.Secure, true)
}

// tokenFromRequest prefers the Authorization header over the cookie
func (m *SessionAuth) tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, err := auth.ExtractBearerToken(header); err == nil {
			return token
		}
	}
	if cookie, err := c.Cookie(m.cookie.Name); err == nil {
		return cookie
	}
	return ""
}
