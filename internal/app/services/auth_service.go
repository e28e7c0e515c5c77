package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/db"
	"github.com/yigit/careernest/internal/pkg/apperrors"
	"github.com/yigit/careernest/internal/pkg/auth"
	"github.com/yigit/careernest/internal/pkg/authcode"
	"github.com/yigit/careernest/internal/pkg/email"
	"github.com/yigit/careernest/internal/pkg/metrics"
	"github.com/yigit/careernest/internal/pkg/sanitize"
	"github.com/yigit/careernest/internal/pkg/validation"
)

// Default lifetimes and landing pages of the auth flows
const (
	DefaultAuthCodeTTL = 15 * time.Minute
	PathUpdatePassword = "/update-password"
)

// AuthConfig configures the auth flows
type AuthConfig struct {
	AppURL      string
	AppName     string
	AuthCodeTTL time.Duration
}

// SignupInput is the data captured by the sign-up form
type SignupInput struct {
	FullName        string
	Role            string
	CollegeID       *int64
	Email           string
	Password        string
	ConfirmPassword string
}

// AuthResult is a signed-in account with its session and landing page
type AuthResult struct {
	Account *models.Account
	Session *auth.Session
	Next    string
}

// AuthService handles authentication operations
type AuthService struct {
	accounts AccountStore
	profiles ProfileStore
	colleges CollegeStore
	tx       db.Transactor
	hasher   *auth.PasswordHasher
	jwt      *auth.JWTService
	codes    authcode.Store
	sender   email.Sender
	config   AuthConfig
	metrics  metrics.Recorder
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	accounts AccountStore,
	profiles ProfileStore,
	colleges CollegeStore,
	tx db.Transactor,
	hasher *auth.PasswordHasher,
	jwtService *auth.JWTService,
	codes authcode.Store,
	sender email.Sender,
	config AuthConfig,
	recorder metrics.Recorder,
	logger zerolog.Logger,
) *AuthService {
	if config.AuthCodeTTL <= 0 {
		config.AuthCodeTTL = DefaultAuthCodeTTL
	}
	return &AuthService{
		accounts: accounts,
		profiles: profiles,
		colleges: colleges,
		tx:       tx,
		hasher:   hasher,
		jwt:      jwtService,
		codes:    codes,
		sender:   sender,
		config:   config,
		metrics:  recorder,
		logger:   logger,
	}
}

// Signup creates the account and its profile in one transaction. Every new
// profile starts in pending_verification.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	fullName := sanitize.Text(in.FullName)
	if !validation.IsValidName(fullName) {
		return nil, apperrors.NewValidationError("full_name", "full_name must be between 2 and 100 characters")
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, apperrors.NewValidationError("role", "role must be one of Student, Faculty, Alumni")
	}
	emailAddr := validation.NormalizeEmail(in.Email)
	if !validation.IsValidEmail(emailAddr) {
		return nil, apperrors.NewValidationError("email", "email must be a valid email address")
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperrors.NewValidationError("confirm_password", apperrors.ErrPasswordMismatch.Error())
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, apperrors.NewValidationError("password", err.Error())
	}
	if in.CollegeID != nil {
		if _, err := s.colleges.GetByID(ctx, *in.CollegeID); err != nil {
			return nil, err
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	account := &models.Account{
		ID:           uuid.New(),
		Email:        emailAddr,
		PasswordHash: hash,
		Role:         role,
		FullName:     fullName,
	}
	profile := &models.Profile{
		ID:        account.ID,
		FullName:  fullName,
		Role:      role,
		CollegeID: in.CollegeID,
		Status:    models.StatusPendingVerification,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.accounts.Create(ctx, account); err != nil {
			return err
		}
		return s.profiles.Create(ctx, profile)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SignupCompleted(string(role))
	s.logger.Info().Str("userID", account.ID.String()).Str("role", string(role)).Msg("Account created")
	return s.signIn(account, PathIDVerification)
}

// Login authenticates with email and password
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (*AuthResult, error) {
	account, err := s.accounts.GetByEmail(ctx, validation.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Check(account.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.signIn(account, PathHome)
}

// CurrentAccount loads the account behind a session
func (s *AuthService) CurrentAccount(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	return s.accounts.GetByID(ctx, userID)
}

// ForgotPassword emails a one-time sign-in link to a known address. Unknown
// addresses are ignored so the response does not reveal which emails exist.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr, next string) error {
	account, err := s.accounts.GetByEmail(ctx, validation.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Debug().Msg("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	code, err := s.codes.Issue(ctx, account.ID, s.config.AuthCodeTTL)
	if err != nil {
		return fmt.Errorf("failed to issue auth code: %w", err)
	}

	link := email.AuthCallbackLink(s.config.AppURL, code, SafeNext(next, PathUpdatePassword))
	msg, err := email.NewPasswordResetMessage(s.config.AppName, account.Email, link)
	if err != nil {
		return fmt.Errorf("failed to render reset email: %w", err)
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.EmailFailed(msg.Kind)
		s.logger.Error().Err(err).Str("userID", account.ID.String()).Msg("Failed to send password reset email")
		return fmt.Errorf("%w: %v", apperrors.ErrEmailDelivery, err)
	}
	return nil
}

// ExchangeCode trades a one-time auth code for a session
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*AuthResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.ErrInvalidAuthCode
	}
	userID, err := s.codes.Consume(ctx, code)
	if err != nil {
		if errors.Is(err, authcode.ErrInvalidCode) {
			return nil, apperrors.ErrInvalidAuthCode
		}
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.signIn(account, PathHome)
}

// UpdatePassword sets a new password for a signed-in account
func (s *AuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, password, confirm string) error {
	if password != confirm {
		return apperrors.NewValidationError("confirm_password", apperrors.ErrPasswordMismatch.Error())
	}
	if err := auth.ValidatePassword(password); err != nil {
		return apperrors.NewValidationError("password", err.Error())
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info().Str("userID", userID.String()).Msg("Password updated")
	return nil
}

func (s *AuthService) signIn(account *models.Account, next string) (*AuthResult, error) {
	session, err := s.jwt.IssueSession(account)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: account, Session: session, Next: next}, nil
}

// SafeNext returns next when it is a local absolute path, otherwise fallback
func SafeNext(next, fallback string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
