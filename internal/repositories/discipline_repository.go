package repositories

import (
	"context"

	"github.com/usv-fiesc/exam-scheduler/internal/models"
)

// DisciplineRepository persists the course catalogue and its teacher links.
type DisciplineRepository interface {
	Create(ctx context.Context, discipline *models.Discipline) error
	GetByID(ctx context.Context, id uint) (*models.Discipline, error)
	GetByName(ctx context.Context, name string) (*models.Discipline, error)
	List(ctx context.Context, filter DisciplineFilter) ([]models.Discipline, error)
	Update(ctx context.Context, discipline *models.Discipline) error
	Delete(ctx context.Context, id uint) error

	// ReplaceTeachers rewrites the teacher assignment set for a discipline.
	ReplaceTeachers(ctx context.Context, disciplineID uint, teacherIDs []string) error
	IsTeacherAssigned(ctx context.Context, disciplineID uint, teacherID string) (bool, error)
	ListForTeacher(ctx context.Context, teacherID string) ([]TeacherDiscipline, error)
}
