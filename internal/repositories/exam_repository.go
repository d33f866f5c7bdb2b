package repositories

import (
	"context"
	"time"

	"github.com/usv-fiesc/exam-scheduler/internal/models"
)

// ExamRepository persists exam proposals and their lifecycle.
type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uint) (*models.Exam, error)

	// HasLiveForDiscipline reports whether the discipline already has an exam
	// that is not REJECTED.
	HasLiveForDiscipline(ctx context.Context, disciplineID uint) (bool, error)

	// Decide moves a PROPOSED exam to a terminal status and reports how many
	// rows matched. Zero rows means the exam was missing or already decided.
	Decide(ctx context.Context, id uint, status models.ExamStatus) (int64, error)

	AssignRoom(ctx context.Context, id uint, roomID uint) error
	CountByRoom(ctx context.Context, roomID uint) (int64, error)

	ListProposals(ctx context.Context) ([]ProposalRow, error)
	ListSchedule(ctx context.Context, filter ExamFilter) ([]ScheduleRow, error)
}

// PeriodRepository persists examination session windows.
type PeriodRepository interface {
	Create(ctx context.Context, period *models.ExamPeriod) error
	GetByID(ctx context.Context, id uint) (*models.ExamPeriod, error)
	List(ctx context.Context) ([]models.ExamPeriod, error)
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error

	// AnyActiveCovering reports whether at least one active period contains
	// the given date.
	AnyActiveCovering(ctx context.Context, date time.Time) (bool, error)
}

// RoomRepository persists examination rooms.
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id uint) (*models.Room, error)
	List(ctx context.Context) ([]models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id uint) error
}
