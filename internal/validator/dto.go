package validator

import (
	"encoding/json"

	"github.com/usv-fiesc/exam-scheduler/internal/models"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// LoginRequest authenticates a locally provisioned account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ExamProposalRequest creates a PROPOSED exam for a discipline.
type ExamProposalRequest struct {
	DisciplineID uint   `json:"discipline_id" validate:"required"`
	ExamDate     string `json:"exam_date" validate:"required,datetime=2006-01-02"`
}

// ExamDecisionRequest settles a proposal.
type ExamDecisionRequest struct {
	Status models.ExamStatus `json:"status" validate:"required,exam_decision"`
}

// RoomAssignRequest binds an approved exam to a room.
type RoomAssignRequest struct {
	RoomID uint `json:"room_id" validate:"required"`
}

// DisciplineCreateRequest adds a course to the catalogue.
type DisciplineCreateRequest struct {
	Name           string   `json:"name" validate:"required,min=1,max=255"`
	YearOfStudy    *int     `json:"year_of_study" validate:"omitempty,min=1,max=6"`
	Specialization *string  `json:"specialization" validate:"omitempty,max=100"`
	TeacherIDs     []string `json:"teacher_ids" validate:"omitempty,dive,required"`
}

// DisciplineUpdateRequest patches a course. Nil fields stay untouched.
type DisciplineUpdateRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=1,max=255"`
	YearOfStudy    *int     `json:"year_of_study" validate:"omitempty,min=1,max=6"`
	Specialization *string  `json:"specialization" validate:"omitempty,max=100"`
	TeacherIDs     []string `json:"teacher_ids" validate:"omitempty,dive,required"`
}

// PeriodCreateRequest opens an examination session window.
type PeriodCreateRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	IsActive  bool   `json:"is_active"`
}

// RoomCreateRequest registers an examination room.
type RoomCreateRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=100"`
	ShortName    *string `json:"short_name" validate:"omitempty,max=50"`
	BuildingName *string `json:"building_name" validate:"omitempty,max=100"`
	Capacity     int     `json:"capacity" validate:"required,min=1"`
}

// RoomUpdateRequest patches a room.
type RoomUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	ShortName    *string `json:"short_name" validate:"omitempty,max=50"`
	BuildingName *string `json:"building_name" validate:"omitempty,max=100"`
	Capacity     *int    `json:"capacity" validate:"omitempty,min=1"`
}

// UserCreateRequest provisions an account directly, bypassing lazy creation.
type UserCreateRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	FullName     string  `json:"full_name" validate:"required,min=1,max=150"`
	Role         string  `json:"role" validate:"required,user_role"`
	Password     *string `json:"password" validate:"omitempty,min=6"`
	StudentGroup *string `json:"student_group" validate:"omitempty,max=50"`
	YearOfStudy  *int    `json:"year_of_study" validate:"omitempty,min=1,max=6"`
}

// FinalizeScheduleRequest closes a session and announces the schedule.
type FinalizeScheduleRequest struct {
	PeriodID uint `json:"period_id" validate:"required"`
}

// ProfileUpdateRequest patches the caller's own profile. It records which
// keys were present in the body, so sending null clears a field while
// omitting it leaves the field alone.
type ProfileUpdateRequest struct {
	FullName        *string `validate:"omitempty,min=1,max=150"`
	StudentGroup    *string `validate:"omitempty,max=50"`
	HasStudentGroup bool
	YearOfStudy     *int `validate:"omitempty,min=1,max=6"`
	HasYearOfStudy  bool
}

func (r *ProfileUpdateRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		FullName     *string         `json:"full_name"`
		StudentGroup json.RawMessage `json:"student_group"`
		YearOfStudy  json.RawMessage `json:"year_of_study"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.FullName = raw.FullName

	if raw.StudentGroup != nil {
		r.HasStudentGroup = true
		if err := json.Unmarshal(raw.StudentGroup, &r.StudentGroup); err != nil {
			return err
		}
	}
	if raw.YearOfStudy != nil {
		r.HasYearOfStudy = true
		if err := json.Unmarshal(raw.YearOfStudy, &r.YearOfStudy); err != nil {
			return err
		}
	}
	return nil
}

// AdminUserUpdateRequest is the wider patch available to administrators.
type AdminUserUpdateRequest struct {
	ProfileUpdateRequest
	Email *string `validate:"omitempty,email"`
	Role  *string `validate:"omitempty,user_role"`
}

func (r *AdminUserUpdateRequest) UnmarshalJSON(data []byte) error {
	if err := r.ProfileUpdateRequest.UnmarshalJSON(data); err != nil {
		return err
	}
	var raw struct {
		Email *string `json:"email"`
		Role  *string `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Email = raw.Email
	r.Role = raw.Role
	return nil
}
