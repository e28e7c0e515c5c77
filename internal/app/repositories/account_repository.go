package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/db"
	"github.com/yigit/careernest/internal/pkg/apperrors"
	"github.com/yigit/careernest/internal/pkg/dberrors"
	"github.com/yigit/careernest/internal/pkg/logger"
)

var accountColumns = []string{
	"id", "email", "password_hash", "role", "full_name", "is_admin", "created_at", "updated_at",
}

// AccountRepository handles database operations for the users table
type AccountRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(database *db.PostgresDB) *AccountRepository {
	return &AccountRepository{db: database, sb: statementBuilder()}
}

// Create inserts a new account. The email is stored lower-cased.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	now := time.Now().UTC()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	account.CreatedAt, account.UpdatedAt = now, now

	sql, args, err := r.sb.Insert("users").
		Columns(accountColumns...).
		Values(account.ID, account.Email, account.PasswordHash, account.Role, account.FullName,
			account.IsAdmin, account.CreatedAt, account.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", account.Email).Msg("Error creating account")
		return fmt.Errorf("error creating account: %w", err)
	}
	return nil
}

// GetByEmail fetches an account by its (case-insensitive) email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

// GetByID fetches an account by id
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *AccountRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Account, error) {
	sql, args, err := r.sb.Select(accountColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var account models.Account
	if err := pgxscan.Get(ctx, r.db.Conn(ctx), &account, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting account: %w", err)
	}
	return &account, nil
}

// UpdatePassword replaces the stored password hash
func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	sql, args, err := r.sb.Update("users").
		Set("password_hash", passwordHash).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// SetAdmin grants or revokes the admin flag
func (r *AccountRepository) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	sql, args, err := r.sb.Update("users").
		Set("is_admin", isAdmin).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating admin flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
