package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/db"
	"github.com/yigit/careernest/internal/pkg/apperrors"
	"github.com/yigit/careernest/internal/pkg/dberrors"
)

// CollegeRepository handles database operations for colleges
type CollegeRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewCollegeRepository creates a new college repository
func NewCollegeRepository(database *db.PostgresDB) *CollegeRepository {
	return &CollegeRepository{db: database, sb: statementBuilder()}
}

// GetByID retrieves a college by ID
func (r *CollegeRepository) GetByID(ctx context.Context, id int64) (*models.College, error) {
	sql, args, err := r.sb.Select("id", "name", "verification_domain").
		From("colleges").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var college models.College
	if err := pgxscan.Get(ctx, r.db.Conn(ctx), &college, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperrors.ErrCollegeNotFound
		}
		return nil, fmt.Errorf("error retrieving college: %w", err)
	}
	return &college, nil
}

// List retrieves colleges ordered by name, optionally filtered by name
func (r *CollegeRepository) List(ctx context.Context, query string) ([]models.College, error) {
	q := r.sb.Select("id", "name", "verification_domain").From("colleges")
	if term := strings.TrimSpace(query); term != "" {
		q = q.Where(squirrel.ILike{"name": "%" + escapeLike(term) + "%"})
	}

	sql, args, err := q.OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var colleges []models.College
	if err := pgxscan.Select(ctx, r.db.Conn(ctx), &colleges, sql, args...); err != nil {
		return nil, fmt.Errorf("error listing colleges: %w", err)
	}
	return colleges, nil
}

// Create inserts a college; used by seeding
func (r *CollegeRepository) Create(ctx context.Context, college *models.College) error {
	sql, args, err := r.sb.Insert("colleges").
		Columns("name", "verification_domain").
		Values(college.Name, college.VerificationDomain).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&college.ID); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrResourceAlreadyExists
		}
		return fmt.Errorf("error creating college: %w", err)
	}
	return nil
}

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(database *db.PostgresDB) *DepartmentRepository {
	return &DepartmentRepository{db: database, sb: statementBuilder()}
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	sql, args, err := r.sb.Select("id", "name", "college_id").
		From("departments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var department models.Department
	if err := pgxscan.Get(ctx, r.db.Conn(ctx), &department, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}
	return &department, nil
}

// List retrieves departments. With a college id, departments of that college
// and college-independent departments are returned.
func (r *DepartmentRepository) List(ctx context.Context, collegeID *int64) ([]models.Department, error) {
	q := r.sb.Select("id", "name", "college_id").From("departments")
	if collegeID != nil {
		q = q.Where(squirrel.Or{squirrel.Eq{"college_id": *collegeID}, squirrel.Eq{"college_id": nil}})
	}

	sql, args, err := q.OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var departments []models.Department
	if err := pgxscan.Select(ctx, r.db.Conn(ctx), &departments, sql, args...); err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}
	return departments, nil
}

// Create inserts a department; used by seeding
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	sql, args, err := r.sb.Insert("departments").
		Columns("name", "college_id").
		Values(department.Name, department.CollegeID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&department.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "departments_college_name_key") {
			return apperrors.ErrResourceAlreadyExists
		}
		return fmt.Errorf("error creating department: %w", err)
	}
	return nil
}
