package dto

import (
	"github.com/google/uuid"

	"github.com/yigit/careernest/internal/app/models"
)

// HomeResponse is the feed shell
type HomeResponse struct {
	Viewer      ViewerSummary `json:"viewer"`
	Tabs        []string      `json:"tabs"`
	SelectedTab string        `json:"selectedTab"`
	Posts       []interface{} `json:"posts"`
}

// ViewerSummary is the signed-in user's card in the page header
type ViewerSummary struct {
	ID       uuid.UUID   `json:"id"`
	FullName string      `json:"fullName"`
	Role     models.Role `json:"role"`
	Headline *string     `json:"headline,omitempty"`
}

// NetworkResponse lists directory suggestions and incoming requests
type NetworkResponse struct {
	Query       string        `json:"query,omitempty"`
	Suggestions []ProfileCard `json:"suggestions"`
	Requests    []ProfileCard `json:"requests"`
}

// ProfileCard is the compact directory entry of a profile
type ProfileCard struct {
	ID             uuid.UUID   `json:"id"`
	FullName       string      `json:"fullName"`
	Role           models.Role `json:"role"`
	Headline       *string     `json:"headline,omitempty"`
	CollegeName    *string     `json:"collegeName,omitempty"`
	DepartmentName *string     `json:"departmentName,omitempty"`
}

// NewProfileCard converts a joined profile view into a card
func NewProfileCard(v *models.ProfileView) ProfileCard {
	return ProfileCard{
		ID:             v.ID,
		FullName:       v.FullName,
		Role:           v.Role,
		Headline:       v.Headline,
		CollegeName:    v.CollegeName,
		DepartmentName: v.DepartmentName,
	}
}

// MessagesResponse is the messaging shell
type MessagesResponse struct {
	Conversations []interface{} `json:"conversations"`
}

// ProfileResponse is a full profile page
type ProfileResponse struct {
	Profile *models.ProfileView `json:"profile"`
	IsOwn   bool                `json:"isOwn"`
}
