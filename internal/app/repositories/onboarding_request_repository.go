package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/db"
)

// OnboardingRequestRepository stores college onboarding requests
type OnboardingRequestRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewOnboardingRequestRepository creates a new OnboardingRequestRepository
func NewOnboardingRequestRepository(database *db.PostgresDB) *OnboardingRequestRepository {
	return &OnboardingRequestRepository{db: database, sb: statementBuilder()}
}

// Create inserts a request and fills in its id
func (r *OnboardingRequestRepository) Create(ctx context.Context, req *models.CollegeOnboardingRequest) error {
	req.CreatedAt = time.Now().UTC()

	sql, args, err := r.sb.Insert("college_onboarding_requests").
		Columns("college_name", "contact_name", "contact_email", "contact_role", "created_at").
		Values(req.CollegeName, req.ContactName, req.ContactEmail, req.ContactRole, req.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&req.ID); err != nil {
		return fmt.Errorf("error creating onboarding request: %w", err)
	}
	return nil
}
