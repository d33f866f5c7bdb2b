package models

import (
	"time"
)

type ExamStatus string

const (
	ExamProposed ExamStatus = "PROPOSED"
	ExamApproved ExamStatus = "APPROVED"
	ExamRejected ExamStatus = "REJECTED"
)

// Terminal reports whether the status permits no further transition.
func (s ExamStatus) Terminal() bool {
	return s == ExamApproved || s == ExamRejected
}

func (s ExamStatus) Valid() bool {
	switch s {
	case ExamProposed, ExamApproved, ExamRejected:
		return true
	}
	return false
}

// Exam is a proposed or scheduled examination for a discipline.
//
// Lifecycle: created PROPOSED by an assigned teacher, decided exactly once by
// a coordinator. A partial unique index on (discipline_id) over non-REJECTED
// rows enforces at most one live exam per discipline; see pkg.InitDatabase.
type Exam struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	DisciplineID uint       `json:"discipline_id" gorm:"not null;index"`
	ExamDate     time.Time  `json:"exam_date" gorm:"not null"`
	Status       ExamStatus `json:"status" gorm:"not null;size:16;default:PROPOSED"`
	RoomID       *uint      `json:"room_id"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`

	Discipline *Discipline `json:"discipline,omitempty" gorm:"foreignKey:DisciplineID"`
	Room       *Room       `json:"room,omitempty" gorm:"foreignKey:RoomID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Exam) TableName() string {
	return "exams"
}

// ExamPeriod is a date window during which exam proposals are accepted.
// Several periods may be active at once; a proposal date is valid when any
// active period covers it inclusively.
type ExamPeriod struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ExamPeriod) TableName() string {
	return "exam_periods"
}

// Covers reports whether t falls inside the period, bounds included.
func (p ExamPeriod) Covers(t time.Time) bool {
	return !t.Before(p.StartDate) && !t.After(p.EndDate)
}

type Room struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Name         string  `json:"name" gorm:"uniqueIndex;not null;size:100"`
	ShortName    *string `json:"short_name" gorm:"size:50"`
	BuildingName *string `json:"building_name" gorm:"size:100"`
	Capacity     int     `json:"capacity" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Room) TableName() string {
	return "rooms"
}
