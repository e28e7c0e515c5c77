package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/yigit/careernest/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	AccountRepository           *AccountRepository
	ProfileRepository           *ProfileRepository
	CollegeRepository           *CollegeRepository
	DepartmentRepository        *DepartmentRepository
	VerificationTokenRepository *VerificationTokenRepository
	OnboardingRequestRepository *OnboardingRequestRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		AccountRepository:           NewAccountRepository(database),
		ProfileRepository:           NewProfileRepository(database),
		CollegeRepository:           NewCollegeRepository(database),
		DepartmentRepository:        NewDepartmentRepository(database),
		VerificationTokenRepository: NewVerificationTokenRepository(database),
		OnboardingRequestRepository: NewOnboardingRequestRepository(database),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
