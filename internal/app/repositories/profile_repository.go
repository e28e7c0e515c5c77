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

var profileColumns = []string{
	"id", "full_name", "role", "college_id", "department_id", "graduation_year",
	"official_email", "personal_email", "id_proof_url", "status", "headline", "bio",
	"created_at", "updated_at",
}

// DirectoryFilter narrows the network directory listing
type DirectoryFilter struct {
	ExcludeID uuid.UUID
	// Query matches full_name case-insensitively when non-empty
	Query  string
	Limit  uint64
	Offset uint64
}

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(database *db.PostgresDB) *ProfileRepository {
	return &ProfileRepository{db: database, sb: statementBuilder()}
}

// Create inserts the profile row created at signup
func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	sql, args, err := r.sb.Insert("profiles").
		Columns(profileColumns...).
		Values(p.ID, p.FullName, p.Role, p.CollegeID, p.DepartmentID, p.GraduationYear,
			p.OfficialEmail, p.PersonalEmail, p.IDProofURL, p.Status, p.Headline, p.Bio,
			p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrResourceAlreadyExists
		}
		return fmt.Errorf("error creating profile: %w", err)
	}
	return nil
}

// GetByID fetches a single profile
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	sql, args, err := r.sb.Select(profileColumns...).From("profiles").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var p models.Profile
	if err := pgxscan.Get(ctx, r.db.Conn(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, fmt.Errorf("error getting profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) viewQuery() squirrel.SelectBuilder {
	cols := make([]string, 0, len(profileColumns)+2)
	for _, c := range profileColumns {
		cols = append(cols, "p."+c)
	}
	cols = append(cols, "c.name AS college_name", "d.name AS department_name")

	return r.sb.Select(cols...).
		From("profiles p").
		LeftJoin("colleges c ON c.id = p.college_id").
		LeftJoin("departments d ON d.id = p.department_id")
}

// GetView fetches a profile joined with its college and department names
func (r *ProfileRepository) GetView(ctx context.Context, id uuid.UUID) (*models.ProfileView, error) {
	sql, args, err := r.viewQuery().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var v models.ProfileView
	if err := pgxscan.Get(ctx, r.db.Conn(ctx), &v, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, fmt.Errorf("error getting profile view: %w", err)
	}
	return &v, nil
}

// UpdateAffiliation writes the non-nil fields of u
func (r *ProfileRepository) UpdateAffiliation(ctx context.Context, id uuid.UUID, u models.AffiliationUpdate) error {
	q := r.sb.Update("profiles").Set("updated_at", time.Now().UTC())
	if u.CollegeID != nil {
		q = q.Set("college_id", *u.CollegeID)
	}
	if u.DepartmentID != nil {
		q = q.Set("department_id", *u.DepartmentID)
	}
	if u.GraduationYear != nil {
		q = q.Set("graduation_year", *u.GraduationYear)
	}
	if u.OfficialEmail != nil {
		q = q.Set("official_email", *u.OfficialEmail)
	}
	if u.PersonalEmail != nil {
		q = q.Set("personal_email", *u.PersonalEmail)
	}
	if u.IDProofURL != nil {
		q = q.Set("id_proof_url", *u.IDProofURL)
	}
	if u.Status != nil {
		q = q.Set("status", *u.Status)
	}

	sql, args, err := q.Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewBadRequestError("unknown college or department")
		}
		logger.Error().Err(err).Str("profileID", id.String()).Msg("Error updating profile affiliation")
		return fmt.Errorf("error updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

// MarkVerified approves a profile that is pending verification and records
// the verified official email. Any other status fails with
// ErrInvalidStatusTransition.
func (r *ProfileRepository) MarkVerified(ctx context.Context, id uuid.UUID, officialEmail string) error {
	sql, args, err := r.sb.Update("profiles").
		Set("official_email", officialEmail).
		Set("status", models.StatusApproved).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "status": models.StatusPendingVerification}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("profileID", id.String()).Msg("Error approving verified profile")
		return fmt.Errorf("error updating profile: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return apperrors.ErrInvalidStatusTransition
}

// TransitionStatus moves the profile from one status to another. It fails
// with ErrInvalidStatusTransition when the profile is not in from.
func (r *ProfileRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.ProfileStatus) error {
	sql, args, err := r.sb.Update("profiles").
		Set("status", to).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating profile status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return apperrors.ErrInvalidStatusTransition
}

// ListByStatus returns profiles in the given status, oldest first
func (r *ProfileRepository) ListByStatus(ctx context.Context, status models.ProfileStatus, offset, limit uint64) ([]models.ProfileView, int64, error) {
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("profiles").Where(squirrel.Eq{"status": status}).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting profiles: %w", err)
	}

	sql, args, err := r.viewQuery().
		Where(squirrel.Eq{"p.status": status}).
		OrderBy("p.updated_at ASC").
		Offset(offset).
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	var views []models.ProfileView
	if err := pgxscan.Select(ctx, r.db.Conn(ctx), &views, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("error listing profiles: %w", err)
	}
	return views, total, nil
}

// ListDirectory returns approved profiles for the network directory
func (r *ProfileRepository) ListDirectory(ctx context.Context, f DirectoryFilter) ([]models.ProfileView, error) {
	q := r.viewQuery().
		Where(squirrel.Eq{"p.status": models.StatusApproved}).
		Where(squirrel.NotEq{"p.id": f.ExcludeID})
	if term := strings.TrimSpace(f.Query); term != "" {
		q = q.Where(squirrel.ILike{"p.full_name": "%" + escapeLike(term) + "%"})
	}

	sql, args, err := q.OrderBy("p.full_name ASC").Offset(f.Offset).Limit(f.Limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var views []models.ProfileView
	if err := pgxscan.Select(ctx, r.db.Conn(ctx), &views, sql, args...); err != nil {
		return nil, fmt.Errorf("error listing directory: %w", err)
	}
	return views, nil
}

// escapeLike escapes LIKE wildcards in user input
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
