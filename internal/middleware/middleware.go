// Package middleware holds the gin middleware shared by every route group.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/careernest/internal/app/models"
)

// Keys set on the gin context by SessionAuth and VerificationGate
const (
	ContextKeyUserID  = "userID"
	ContextKeyEmail   = "email"
	ContextKeyRole    = "role"
	ContextKeyIsAdmin = "isAdmin"
	ContextKeyProfile = "profile"

	contextKeySessionError = "sessionError"
)

// UserID returns the signed-in account id, or uuid.Nil without a session
func UserID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(ContextKeyUserID)
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}

// Role returns the role carried by the session
func Role(c *gin.Context) models.Role {
	v, _ := c.Get(ContextKeyRole)
	role, _ := v.(models.Role)
	return role
}

// IsAdmin reports whether the session belongs to an admin account
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ContextKeyIsAdmin)
}

// Profile returns the profile the verification gate loaded for this request
func Profile(c *gin.Context) *models.Profile {
	v, ok := c.Get(ContextKeyProfile)
	if !ok {
		return nil
	}
	p, _ := v.(*models.Profile)
	return p
}
