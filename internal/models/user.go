package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent  UserRole = "STUDENT"
	RoleGroupRep UserRole = "SEF_GRUPA"
	RoleTeacher  UserRole = "CADRU_DIDACTIC"
	RoleAdmin    UserRole = "ADMIN"
)

// IsStudentRole reports whether the role may carry group and year-of-study
// fields. Only student-type roles can edit their own profile details.
func (r UserRole) IsStudentRole() bool {
	return r == RoleStudent || r == RoleGroupRep
}

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleGroupRep, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User is an account known to the scheduler. Rows are created either by an
// administrator or lazily on the first authenticated request of an external
// identity; in the latter case ID is the identity provider's subject.
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:200"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:32"`

	// Set only for admin accounts that log in with a password.
	PasswordHash *string `json:"-" gorm:"size:255"`

	// Student profile, meaningful only for student-type roles.
	StudentGroup *string `json:"student_group" gorm:"size:50"`
	YearOfStudy  *int    `json:"year_of_study"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
