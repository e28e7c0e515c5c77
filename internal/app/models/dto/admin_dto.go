package dto

import "github.com/yigit/careernest/internal/app/models"

// PaginationInfo describes a page of a listing
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
}

// PendingProfilesResponse is a page of profiles awaiting review
type PendingProfilesResponse struct {
	Profiles       []models.ProfileView `json:"profiles"`
	PaginationInfo PaginationInfo       `json:"paginationInfo"`
}

// StatusChangeResponse reports an admin decision
type StatusChangeResponse struct {
	UserID string               `json:"userId"`
	Status models.ProfileStatus `json:"status"`
}
