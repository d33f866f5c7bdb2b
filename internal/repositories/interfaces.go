package repositories

import (
	"time"

	"github.com/usv-fiesc/exam-scheduler/internal/models"
)

// UserFilter narrows user listings. Zero values mean "no constraint".
type UserFilter struct {
	Role         models.UserRole
	StudentGroup string
	Limit        int
	Offset       int
}

// UserDetailsPatch carries the fields a profile update may touch.
// The Set flags distinguish "leave alone" from "write" so a nil pointer
// with the flag raised clears the column.
type UserDetailsPatch struct {
	FullName        *string
	StudentGroup    *string
	SetStudentGroup bool
	YearOfStudy     *int
	SetYearOfStudy  bool
}

// AdminUserPatch is the wider patch available to administrators.
type AdminUserPatch struct {
	Email *string
	Role  *models.UserRole
	UserDetailsPatch
}

// DisciplineFilter narrows discipline listings.
type DisciplineFilter struct {
	YearOfStudy    *int
	Specialization string
	Limit          int
	Offset         int
}

// TeacherDiscipline is the per-teacher projection: a discipline plus the
// status of its live exam, if one exists.
type TeacherDiscipline struct {
	Discipline models.Discipline
	ExamID     *uint
	ExamStatus *models.ExamStatus
	ExamDate   *time.Time
}

// ProposalRow is the flattened listing the review queue renders.
type ProposalRow struct {
	ExamID         uint      `json:"exam_id"`
	DisciplineID   uint      `json:"discipline_id"`
	DisciplineName string    `json:"discipline_name"`
	TeacherNames   []string  `json:"teacher_names"`
	ExamDate       time.Time `json:"exam_date"`
	ProposedAt     time.Time `json:"proposed_at"`
}

// ScheduleRow is one entry of the approved-exam schedule projection.
type ScheduleRow struct {
	ExamID         uint      `json:"exam_id"`
	DisciplineID   uint      `json:"discipline_id"`
	DisciplineName string    `json:"discipline_name"`
	TeacherNames   []string  `json:"teacher_names"`
	ExamDate       time.Time `json:"exam_date"`
	YearOfStudy    *int      `json:"year_of_study,omitempty"`
	Specialization *string   `json:"specialization,omitempty"`
	RoomName       *string   `json:"room_name,omitempty"`
}

// ExamFilter narrows exam listings.
type ExamFilter struct {
	Status       models.ExamStatus
	DisciplineID *uint
	YearOfStudy  *int
	From         *time.Time
	To           *time.Time
}
