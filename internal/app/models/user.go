package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is the authentication identity stored in the 'users' table
type Account struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email" example:"a@dcrustm.org"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role" example:"Student"`
	FullName     string    `json:"fullName" db:"full_name" example:"Asha Verma"`
	IsAdmin      bool      `json:"isAdmin" db:"is_admin"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Profile is the application-owned record of a user's affiliation and
// verification state. Profile.ID equals the owning Account.ID.
type Profile struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	FullName       string        `json:"fullName" db:"full_name"`
	Role           Role          `json:"role" db:"role"`
	CollegeID      *int64        `json:"collegeId,omitempty" db:"college_id"`
	DepartmentID   *int64        `json:"departmentId,omitempty" db:"department_id"`
	GraduationYear *int          `json:"graduationYear,omitempty" db:"graduation_year"`
	OfficialEmail  *string       `json:"officialEmail,omitempty" db:"official_email"`
	PersonalEmail  *string       `json:"personalEmail,omitempty" db:"personal_email"`
	IDProofURL     *string       `json:"idProofUrl,omitempty" db:"id_proof_url"`
	Status         ProfileStatus `json:"status" db:"status"`
	Headline       *string       `json:"headline,omitempty" db:"headline"`
	Bio            *string       `json:"bio,omitempty" db:"bio"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

// ProfileView is a profile joined with its college and department names
type ProfileView struct {
	Profile
	CollegeName    *string `json:"collegeName,omitempty" db:"college_name"`
	DepartmentName *string `json:"departmentName,omitempty" db:"department_name"`
}

// AffiliationUpdate carries the fields a verification submission writes to
// the profile. Nil pointers leave the column untouched.
type AffiliationUpdate struct {
	CollegeID      *int64
	DepartmentID   *int64
	GraduationYear *int
	OfficialEmail  *string
	PersonalEmail  *string
	IDProofURL     *string
	Status         *ProfileStatus
}
