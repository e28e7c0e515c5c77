package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/app/repositories"
)

// AccountStore persists accounts
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error
}

// ProfileStore persists profiles and their verification state
type ProfileStore interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetView(ctx context.Context, id uuid.UUID) (*models.ProfileView, error)
	UpdateAffiliation(ctx context.Context, id uuid.UUID, u models.AffiliationUpdate) error
	MarkVerified(ctx context.Context, id uuid.UUID, officialEmail string) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.ProfileStatus) error
	ListByStatus(ctx context.Context, status models.ProfileStatus, offset, limit uint64) ([]models.ProfileView, int64, error)
	ListDirectory(ctx context.Context, f repositories.DirectoryFilter) ([]models.ProfileView, error)
}

// CollegeStore reads and creates colleges
type CollegeStore interface {
	GetByID(ctx context.Context, id int64) (*models.College, error)
	List(ctx context.Context, query string) ([]models.College, error)
	Create(ctx context.Context, college *models.College) error
}

// DepartmentStore reads and creates departments
type DepartmentStore interface {
	GetByID(ctx context.Context, id int64) (*models.Department, error)
	List(ctx context.Context, collegeID *int64) ([]models.Department, error)
	Create(ctx context.Context, department *models.Department) error
}

// TokenStore persists college email verification tokens
type TokenStore interface {
	Create(ctx context.Context, t *models.VerificationToken) error
	Claim(ctx context.Context, token string) (*models.VerificationToken, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// OnboardingStore persists college onboarding requests
type OnboardingStore interface {
	Create(ctx context.Context, req *models.CollegeOnboardingRequest) error
}
