package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/pkg/apperrors"
)

// CollegeStore is the part of the college repository seeding needs
type CollegeStore interface {
	List(ctx context.Context, query string) ([]models.College, error)
	Create(ctx context.Context, college *models.College) error
}

// DepartmentStore is the part of the department repository seeding needs
type DepartmentStore interface {
	List(ctx context.Context, collegeID *int64) ([]models.Department, error)
	Create(ctx context.Context, department *models.Department) error
}

// DefaultCollege is an onboarded college with its departments
type DefaultCollege struct {
	Name        string
	Domain      string
	Departments []string
}

// DefaultColleges are the colleges available out of the box
var DefaultColleges = []DefaultCollege{
	{
		Name:   "Deenbandhu Chhotu Ram University of Science and Technology, Murthal",
		Domain: "dcrustm.org",
		Departments: []string{
			"Computer Science and Engineering",
			"Electronics and Communication Engineering",
			"Electrical Engineering",
			"Mechanical Engineering",
			"Civil Engineering",
			"Chemical Engineering",
			"Biomedical Engineering",
			"Management Studies",
		},
	},
}

// CreateDefaultData creates the default colleges and departments if they
// don't exist. Every failure is collected and returned together.
func CreateDefaultData(ctx context.Context, colleges CollegeStore, departments DepartmentStore, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Colleges/Departments)...")
	var finalErr error

	for _, dc := range DefaultColleges {
		collegeID, err := ensureCollege(ctx, colleges, dc)
		if err != nil {
			lgr.Error().Err(err).Str("college", dc.Name).Msg("Error creating college")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		existing, err := departments.List(ctx, &collegeID)
		if err != nil {
			lgr.Error().Err(err).Str("college", dc.Name).Msg("Error listing departments")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		have := make(map[string]bool, len(existing))
		for _, d := range existing {
			if d.CollegeID != nil && *d.CollegeID == collegeID {
				have[strings.ToLower(d.Name)] = true
			}
		}

		created := 0
		for _, name := range dc.Departments {
			if have[strings.ToLower(name)] {
				continue
			}
			id := collegeID
			if err := departments.Create(ctx, &models.Department{Name: name, CollegeID: &id}); err != nil {
				lgr.Error().Err(err).Str("department", name).Msg("Error creating department")
				finalErr = errors.Join(finalErr, err)
				continue
			}
			created++
		}
		lgr.Info().Str("college", dc.Name).Int64("collegeID", collegeID).Int("departmentsCreated", created).Msg("College ready")
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

// ensureCollege returns the id of the college named dc.Name, creating it
// when missing
func ensureCollege(ctx context.Context, colleges CollegeStore, dc DefaultCollege) (int64, error) {
	domain := dc.Domain
	college := &models.College{Name: dc.Name, VerificationDomain: &domain}
	err := colleges.Create(ctx, college)
	if err == nil {
		return college.ID, nil
	}
	if !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
		return 0, err
	}

	found, err := colleges.List(ctx, dc.Name)
	if err != nil {
		return 0, err
	}
	for _, c := range found {
		if strings.EqualFold(c.Name, dc.Name) {
			return c.ID, nil
		}
	}
	return 0, fmt.Errorf("college %q exists but could not be found", dc.Name)
}
