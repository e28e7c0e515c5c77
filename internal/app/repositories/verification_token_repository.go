package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/db"
	"github.com/yigit/careernest/internal/pkg/apperrors"
)

const verificationTable = "college_verifications"

var verificationColumns = []string{"token", "user_id", "official_email", "expires_at", "created_at"}

// VerificationTokenRepository handles database operations for college email verification tokens
type VerificationTokenRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewVerificationTokenRepository creates a new VerificationTokenRepository
func NewVerificationTokenRepository(database *db.PostgresDB) *VerificationTokenRepository {
	return &VerificationTokenRepository{db: database, sb: statementBuilder()}
}

// Create stores a new verification token
func (r *VerificationTokenRepository) Create(ctx context.Context, t *models.VerificationToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	sql, args, err := r.sb.Insert(verificationTable).
		Columns(verificationColumns...).
		Values(t.Token, t.UserID, t.OfficialEmail, t.ExpiresAt, t.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error creating verification token: %w", err)
	}
	return nil
}

// Claim deletes the token and returns the deleted row. Two concurrent
// claims of the same token cannot both succeed.
func (r *VerificationTokenRepository) Claim(ctx context.Context, token string) (*models.VerificationToken, error) {
	sql, args, err := r.sb.Delete(verificationTable).
		Where(squirrel.Eq{"token": token}).
		Suffix("RETURNING token, user_id, official_email, expires_at, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var t models.VerificationToken
	if err := pgxscan.Get(ctx, r.db.Conn(ctx), &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("error claiming token: %w", err)
	}
	return &t, nil
}

// DeleteByUserID deletes all tokens for a specific user
func (r *VerificationTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	sql, args, err := r.sb.Delete(verificationTable).Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting tokens for user: %w", err)
	}
	return nil
}

// DeleteExpired deletes tokens that expired at or before now
func (r *VerificationTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := r.sb.Delete(verificationTable).Where(squirrel.LtOrEq{"expires_at": now}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
