package services

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/pkg/metrics"
)

// Page paths the gate and the redemption route redirect to
const (
	PathLogin           = "/login"
	PathHome            = "/home"
	PathProfile         = "/profile"
	PathIDVerification  = "/id-verification"
	PathPendingApproval = "/pending-approval"
)

// Messages shown on the login page for profiles the gate turns away
const (
	msgNotApproved   = "Your account verification was not approved."
	msgUnknownStatus = "Your account is in an unknown state. Please contact support."
)

// GateDecision is the outcome of the verification gate for one request
type GateDecision struct {
	Allow    bool
	Redirect string
	Profile  *models.Profile
}

// Target is the metrics label of the decision
func (d GateDecision) Target() string {
	if d.Allow {
		return "allow"
	}
	if u, err := url.Parse(d.Redirect); err == nil {
		return u.Path
	}
	return d.Redirect
}

// LoginWithError builds /login?error=<msg>
func LoginWithError(msg string) string {
	return PathLogin + "?error=" + url.QueryEscape(msg)
}

// DecideGate maps a profile lookup result to a gate decision. A lookup error
// or a missing profile sends the user to the verification form.
func DecideGate(profile *models.Profile, err error) GateDecision {
	if err != nil || profile == nil {
		return GateDecision{Redirect: PathIDVerification}
	}

	switch profile.Status {
	case models.StatusApproved:
		return GateDecision{Allow: true, Profile: profile}
	case models.StatusPendingVerification:
		return GateDecision{Redirect: PathIDVerification, Profile: profile}
	case models.StatusPendingAdminApproval:
		return GateDecision{Redirect: PathPendingApproval, Profile: profile}
	case models.StatusRejected:
		return GateDecision{Redirect: LoginWithError(msgNotApproved), Profile: profile}
	default:
		return GateDecision{Redirect: LoginWithError(msgUnknownStatus), Profile: profile}
	}
}

// GateService resolves the gate for a signed-in account
type GateService struct {
	profiles ProfileStore
	metrics  metrics.Recorder
	logger   zerolog.Logger
}

// NewGateService creates a new GateService
func NewGateService(profiles ProfileStore, recorder metrics.Recorder, logger zerolog.Logger) *GateService {
	return &GateService{profiles: profiles, metrics: recorder, logger: logger}
}

// Check reads the profile once and decides. uuid.Nil means no session.
func (s *GateService) Check(ctx context.Context, userID uuid.UUID) GateDecision {
	var d GateDecision
	if userID == uuid.Nil {
		d = GateDecision{Redirect: PathLogin}
	} else {
		profile, err := s.profiles.GetByID(ctx, userID)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Profile lookup failed in verification gate")
		}
		d = DecideGate(profile, err)
	}

	s.metrics.GateDecision(d.Target())
	return d
}
