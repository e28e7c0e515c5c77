package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yigit/careernest/internal/app/controllers"
	"github.com/yigit/careernest/internal/middleware"
)

// Controllers groups every HTTP controller the router mounts
type Controllers struct {
	Auth         *controllers.AuthController
	Verification *controllers.VerificationController
	Function     *controllers.FunctionController
	Pages        *controllers.PageController
	Lookup       *controllers.LookupController
	Admin        *controllers.AdminController
}

// Middleware groups the middleware shared between route groups
type Middleware struct {
	Session     *middleware.SessionAuth
	Gate        middleware.GateChecker
	RateLimiter *middleware.RateLimiter
}

// FunctionCORS is the CORS policy of the serverless email function
func FunctionCORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"authorization", "x-client-info", "apikey", "content-type"},
	})
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, m Middleware) {
	limit := m.RateLimiter.Middleware()

	// The session is resolved for every route; groups decide whether it is required
	router.Use(m.Session.Resolve())

	// --- Auth provider surface ---
	auth := router.Group("/auth")
	{
		auth.POST("/signup", limit, c.Auth.Signup)
		auth.POST("/login", limit, c.Auth.Login)
		auth.POST("/logout", c.Auth.Logout)
		auth.POST("/forgot-password", limit, c.Auth.ForgotPassword)
		auth.GET("/callback", c.Auth.Callback)
		auth.POST("/update-password", m.Session.RequireSession(), c.Auth.UpdatePassword)
		auth.GET("/verify-college-email", c.Verification.VerifyCollegeEmail)
	}

	// --- Serverless email function ---
	functions := router.Group("/functions/v1")
	functions.Use(FunctionCORS())
	{
		functions.OPTIONS("/student-verify-email", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })
		functions.POST("/student-verify-email", limit, c.Function.SendVerificationEmail)
	}

	// --- Verification pages: signed in, not yet approved ---
	router.GET("/id-verification", c.Verification.Form)
	router.POST("/id-verification", m.Session.RequireSession(), c.Verification.Submit)
	router.GET("/pending-approval", c.Verification.PendingApproval)

	// --- Protected pages: approved profiles only ---
	protected := router.Group("")
	protected.Use(middleware.VerificationGate(m.Gate))
	{
		protected.GET("/home", c.Pages.Home)
		protected.GET("/network", c.Pages.Network)
		protected.GET("/messages", c.Pages.Messages)
		protected.GET("/profile", c.Pages.OwnProfile)
		protected.GET("/profile/:userId", c.Pages.Profile)
	}

	// --- Public lookups ---
	api := router.Group("/api")
	{
		api.GET("/colleges", c.Lookup.Colleges)
		api.GET("/departments", c.Lookup.Departments)
		api.POST("/onboarding-requests", limit, c.Lookup.RequestOnboarding)
	}

	// --- Admin review ---
	admin := router.Group("/admin")
	admin.Use(m.Session.RequireSession(), m.Session.RequireAdmin())
	{
		admin.GET("/profiles/pending", c.Admin.ListPending)
		admin.POST("/profiles/:userId/approve", c.Admin.Approve)
		admin.POST("/profiles/:userId/reject", c.Admin.Reject)
	}
}
