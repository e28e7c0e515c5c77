package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/app/models/dto"
	"github.com/yigit/careernest/internal/pkg/helpers"
)

// AdminService reviews profiles that uploaded an identity document
type AdminService struct {
	profiles ProfileStore
	accounts AccountStore
	logger   zerolog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(profiles ProfileStore, accounts AccountStore, logger zerolog.Logger) *AdminService {
	return &AdminService{profiles: profiles, accounts: accounts, logger: logger}
}

// ListPending returns a page of profiles awaiting review, oldest first
func (s *AdminService) ListPending(ctx context.Context, page, size int) (*dto.PendingProfilesResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	views, total, err := s.profiles.ListByStatus(ctx, models.StatusPendingAdminApproval, offset, uint64(limit))
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []models.ProfileView{}
	}
	return &dto.PendingProfilesResponse{
		Profiles:       views,
		PaginationInfo: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// Approve grants access to a profile under review
func (s *AdminService) Approve(ctx context.Context, userID uuid.UUID) error {
	return s.decide(ctx, userID, models.StatusApproved)
}

// Reject turns down a profile under review. The user may submit again.
func (s *AdminService) Reject(ctx context.Context, userID uuid.UUID) error {
	return s.decide(ctx, userID, models.StatusRejected)
}

func (s *AdminService) decide(ctx context.Context, userID uuid.UUID, to models.ProfileStatus) error {
	if err := s.profiles.TransitionStatus(ctx, userID, models.StatusPendingAdminApproval, to); err != nil {
		return err
	}
	s.logger.Info().Str("userID", userID.String()).Str("status", string(to)).Msg("Profile reviewed")
	return nil
}

// GrantAdmin marks the account as an administrator
func (s *AdminService) GrantAdmin(ctx context.Context, userID uuid.UUID) error {
	if err := s.accounts.SetAdmin(ctx, userID, true); err != nil {
		return err
	}
	s.logger.Info().Str("userID", userID.String()).Msg("Admin granted")
	return nil
}
