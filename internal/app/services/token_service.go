package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/db"
	"github.com/yigit/careernest/internal/pkg/apperrors"
	"github.com/yigit/careernest/internal/pkg/email"
	"github.com/yigit/careernest/internal/pkg/helpers"
	"github.com/yigit/careernest/internal/pkg/metrics"
	"github.com/yigit/careernest/internal/pkg/telemetry"
	"github.com/yigit/careernest/internal/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultTokenTTL is how long an emailed verification link stays redeemable
const DefaultTokenTTL = time.Hour

// RedeemOutcome is the result of following a verification link
type RedeemOutcome string

const (
	RedeemApproved     RedeemOutcome = "approved"
	RedeemInvalidLink  RedeemOutcome = "invalid_link"
	RedeemNotFound     RedeemOutcome = "not_found"
	RedeemExpired      RedeemOutcome = "expired"
	RedeemUpdateFailed RedeemOutcome = "update_failed"
)

// Redirect returns the page the browser is sent to for the outcome
func (o RedeemOutcome) Redirect() string {
	switch o {
	case RedeemApproved:
		return PathHome
	case RedeemInvalidLink:
		return LoginWithError("Invalid verification link.")
	case RedeemNotFound:
		return LoginWithError("Invalid or expired token.")
	case RedeemExpired:
		return LoginWithError("Verification link has expired.")
	default:
		return LoginWithError("Failed to update your profile.")
	}
}

var errProfileUpdate = errors.New("profile update failed")

// TokenConfig configures issuance
type TokenConfig struct {
	AppURL  string
	AppName string
	TTL     time.Duration
}

// TokenService issues and redeems college email verification tokens
type TokenService struct {
	tokens   TokenStore
	profiles ProfileStore
	colleges CollegeStore
	tx       db.Transactor
	sender   email.Sender
	config   TokenConfig
	clock    helpers.Clock
	metrics  metrics.Recorder
	logger   zerolog.Logger
}

// NewTokenService creates a new TokenService
func NewTokenService(
	tokens TokenStore,
	profiles ProfileStore,
	colleges CollegeStore,
	tx db.Transactor,
	sender email.Sender,
	config TokenConfig,
	clock helpers.Clock,
	recorder metrics.Recorder,
	logger zerolog.Logger,
) *TokenService {
	if config.TTL <= 0 {
		config.TTL = DefaultTokenTTL
	}
	return &TokenService{
		tokens:   tokens,
		profiles: profiles,
		colleges: colleges,
		tx:       tx,
		sender:   sender,
		config:   config,
		clock:    clock,
		metrics:  recorder,
		logger:   logger,
	}
}

// Issue stores a fresh token for the user, replacing any earlier ones, and
// emails the redemption link. Only a student profile awaiting email
// verification can be issued a token, and the address must belong to the
// profile's college domain when one is configured. The row is stored before
// the send is attempted; a failed send leaves it to expire.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID, officialEmail string) error {
	officialEmail = validation.NormalizeEmail(officialEmail)
	if userID == uuid.Nil || officialEmail == "" {
		return apperrors.ErrMissingVerificationFields
	}
	if !validation.IsValidEmail(officialEmail) {
		return apperrors.NewValidationError("official_email", "official_email must be a valid email address")
	}
	if err := s.checkEligible(ctx, userID, officialEmail); err != nil {
		return err
	}

	now := s.clock()
	token := &models.VerificationToken{
		Token:         uuid.NewString(),
		UserID:        userID,
		OfficialEmail: officialEmail,
		ExpiresAt:     now.Add(s.config.TTL),
		CreatedAt:     now,
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.tokens.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		return s.tokens.Create(ctx, token)
	})
	if err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}
	s.metrics.TokenIssued()

	msg, err := email.NewVerificationMessage(s.config.AppName, officialEmail, email.VerificationLink(s.config.AppURL, token.Token))
	if err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.EmailFailed(msg.Kind)
		s.logger.Error().Err(err).Str("userID", userID.String()).Msg("Failed to send verification email")
		return fmt.Errorf("%w: %v", apperrors.ErrEmailDelivery, err)
	}

	s.logger.Info().Str("userID", userID.String()).Time("expiresAt", token.ExpiresAt).Msg("Verification token issued")
	return nil
}

func (s *TokenService) checkEligible(ctx context.Context, userID uuid.UUID, officialEmail string) error {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if profile.Role != models.RoleStudent || profile.Status != models.StatusPendingVerification {
		return fmt.Errorf("%w: %s profile is %s", apperrors.ErrVerificationNotAllowed, profile.Role, profile.Status)
	}
	if profile.CollegeID == nil {
		return nil
	}

	college, err := s.colleges.GetByID(ctx, *profile.CollegeID)
	if err != nil {
		return err
	}
	if domain := college.Domain(); domain != "" && !validation.DomainMatches(officialEmail, domain) {
		return apperrors.NewCustomError(apperrors.ErrEmailDomainMismatch,
			fmt.Sprintf("Official email must belong to %s", domain)).
			WithDetails(map[string]interface{}{"field": "official_email"})
	}
	return nil
}

// Redeem consumes a token and approves its profile. Claim and approval run
// in one transaction, so a failed profile update leaves the token in place.
// Approval only applies to a profile still pending verification.
// An expired token is deleted and reported as expired.
func (s *TokenService) Redeem(ctx context.Context, token string) (outcome RedeemOutcome, err error) {
	ctx, span := telemetry.Tracer("careernest/services").Start(ctx, "TokenService.Redeem")
	defer func() {
		span.SetAttributes(attribute.String("redeem.outcome", string(outcome)))
		span.End()
	}()

	token = strings.TrimSpace(token)
	if token == "" {
		s.metrics.TokenRedeemed(string(RedeemInvalidLink))
		return RedeemInvalidLink, apperrors.ErrVerificationLinkInvalid
	}

	now := s.clock()
	var claimed *models.VerificationToken
	var expired bool

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		t, err := s.tokens.Claim(ctx, token)
		if err != nil {
			return err
		}
		if t.Expired(now) {
			expired = true
			return nil
		}
		if err := s.profiles.MarkVerified(ctx, t.UserID, t.OfficialEmail); err != nil {
			return fmt.Errorf("%w: %w", errProfileUpdate, err)
		}
		claimed = t
		return nil
	})

	outcome = RedeemApproved
	switch {
	case errors.Is(err, errProfileUpdate):
		outcome = RedeemUpdateFailed
		s.logger.Error().Err(err).Msg("Failed to approve profile for verification token")
	case err != nil:
		outcome = RedeemNotFound
		if !errors.Is(err, apperrors.ErrTokenNotFound) {
			s.logger.Error().Err(err).Msg("Failed to claim verification token")
		}
	case expired:
		outcome = RedeemExpired
		err = apperrors.ErrTokenExpired
	}
	s.metrics.TokenRedeemed(string(outcome))

	if outcome == RedeemApproved {
		s.logger.Info().Str("userID", claimed.UserID.String()).Msg("College email verified, profile approved")
	}
	return outcome, err
}

// PurgeExpired deletes tokens past their expiry
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.clock())
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("deleted", n).Msg("Purged expired verification tokens")
	return n, nil
}
