package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/careernest/internal/app/services"
)

// GateChecker decides whether an account may see the protected pages
type GateChecker interface {
	Check(ctx context.Context, userID uuid.UUID) services.GateDecision
}

// VerificationGate redirects every account whose profile is not approved.
// It must run after SessionAuth.Resolve.
func VerificationGate(gate GateChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := gate.Check(c.Request.Context(), UserID(c))
		if !decision.Allow {
			c.Redirect(http.StatusFound, decision.Redirect)
			c.Abort()
			return
		}

		c.Set(ContextKeyProfile, decision.Profile)
		c.Next()
	}
}
