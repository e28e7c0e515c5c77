// Package services holds the business logic of the verification workflow
// and the pages around it. Services depend on the store interfaces in
// interfaces.go, so tests run them against in-memory fakes.
package services

import (
	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/repositories"
	"github.com/yigit/careernest/internal/db"
	"github.com/yigit/careernest/internal/pkg/auth"
	"github.com/yigit/careernest/internal/pkg/authcode"
	"github.com/yigit/careernest/internal/pkg/email"
	"github.com/yigit/careernest/internal/pkg/filestorage"
	"github.com/yigit/careernest/internal/pkg/helpers"
	"github.com/yigit/careernest/internal/pkg/logger"
	"github.com/yigit/careernest/internal/pkg/metrics"
)

// Deps are the collaborators shared by the services
type Deps struct {
	Repos        *repositories.Repositories
	Transactor   db.Transactor
	Hasher       *auth.PasswordHasher
	JWT          *auth.JWTService
	AuthCodes    authcode.Store
	Sender       email.Sender
	Storage      filestorage.Storage
	Metrics      metrics.Recorder
	Clock        helpers.Clock
	Auth         AuthConfig
	Token        TokenConfig
	Verification VerificationConfig
}

// Services holds all the service instances
type Services struct {
	Gate         *GateService
	Auth         *AuthService
	Tokens       *TokenService
	Verification *VerificationService
	Profiles     *ProfileService
	Lookup       *LookupService
	Admin        *AdminService
}

// NewServices wires every service from d
func NewServices(d Deps) *Services {
	component := func(name string) zerolog.Logger { return logger.Component(name) }
	r := d.Repos

	tokens := NewTokenService(r.VerificationTokenRepository, r.ProfileRepository, r.CollegeRepository, d.Transactor, d.Sender,
		d.Token, d.Clock, d.Metrics, component("tokens"))
	authService := NewAuthService(r.AccountRepository, r.ProfileRepository, r.CollegeRepository, d.Transactor,
		d.Hasher, d.JWT, d.AuthCodes, d.Sender, d.Auth, d.Metrics, component("auth"))
	verification := NewVerificationService(r.ProfileRepository, r.CollegeRepository, r.DepartmentRepository,
		tokens, d.Storage, d.Verification, d.Clock, d.Metrics, component("verification"))

	return &Services{
		Gate:         NewGateService(r.ProfileRepository, d.Metrics, component("gate")),
		Auth:         authService,
		Tokens:       tokens,
		Verification: verification,
		Profiles:     NewProfileService(r.ProfileRepository, component("profiles")),
		Lookup:       NewLookupService(r.CollegeRepository, r.DepartmentRepository, r.OnboardingRequestRepository, component("lookup")),
		Admin:        NewAdminService(r.ProfileRepository, r.AccountRepository, component("admin")),
	}
}
