package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/app/models/dto"
	"github.com/yigit/careernest/internal/app/repositories"
	"github.com/yigit/careernest/internal/pkg/apperrors"
	"github.com/yigit/careernest/internal/pkg/validation"
)

// Directory sizes of the network page
const (
	MaxSuggestions = 10
	MaxRequests    = 3
)

// FeedTabs are the tabs of the home feed, first is the default
var FeedTabs = []string{"all", "jobs", "events", "connections"}

// ProfileService builds the protected pages
type ProfileService struct {
	profiles ProfileStore
	logger   zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(profiles ProfileStore, logger zerolog.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, logger: logger}
}

// Home returns the feed shell for the viewer
func (s *ProfileService) Home(viewer *models.Profile, tab string) *dto.HomeResponse {
	selected := FeedTabs[0]
	for _, t := range FeedTabs {
		if t == tab {
			selected = t
		}
	}
	return &dto.HomeResponse{
		Viewer: dto.ViewerSummary{
			ID:       viewer.ID,
			FullName: viewer.FullName,
			Role:     viewer.Role,
			Headline: viewer.Headline,
		},
		Tabs:        FeedTabs,
		SelectedTab: selected,
		Posts:       []interface{}{},
	}
}

// Network returns directory suggestions and pending requests. The viewer is
// never listed.
func (s *ProfileService) Network(ctx context.Context, viewerID uuid.UUID, query string) (*dto.NetworkResponse, error) {
	query = validation.TruncateQuery(query)

	suggestions, err := s.profiles.ListDirectory(ctx, repositories.DirectoryFilter{
		ExcludeID: viewerID,
		Query:     query,
		Limit:     MaxSuggestions,
	})
	if err != nil {
		return nil, err
	}
	requests, err := s.profiles.ListDirectory(ctx, repositories.DirectoryFilter{
		ExcludeID: viewerID,
		Limit:     MaxRequests,
	})
	if err != nil {
		return nil, err
	}

	return &dto.NetworkResponse{
		Query:       query,
		Suggestions: toCards(suggestions, MaxSuggestions),
		Requests:    toCards(requests, MaxRequests),
	}, nil
}

// Messages returns the messaging shell
func (s *ProfileService) Messages() *dto.MessagesResponse {
	return &dto.MessagesResponse{Conversations: []interface{}{}}
}

// Own returns the viewer's joined profile
func (s *ProfileService) Own(ctx context.Context, viewerID uuid.UUID) (*dto.ProfileResponse, error) {
	view, err := s.profiles.GetView(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileResponse{Profile: view, IsOwn: true}, nil
}

// ByID returns another user's joined profile. Any lookup failure is a not
// found for the caller.
func (s *ProfileService) ByID(ctx context.Context, id uuid.UUID) (*dto.ProfileResponse, error) {
	view, err := s.profiles.GetView(ctx, id)
	if err != nil {
		s.logger.Debug().Err(err).Str("profileID", id.String()).Msg("Profile lookup failed")
		return nil, apperrors.NewResourceNotFoundError("Profile not found")
	}
	return &dto.ProfileResponse{Profile: view}, nil
}

func toCards(views []models.ProfileView, max int) []dto.ProfileCard {
	cards := make([]dto.ProfileCard, 0, len(views))
	for i := range views {
		if len(cards) == max {
			break
		}
		cards = append(cards, dto.NewProfileCard(&views[i]))
	}
	return cards
}
