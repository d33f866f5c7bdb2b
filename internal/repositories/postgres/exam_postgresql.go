package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
)

type ExamPostgres struct {
	db *gorm.DB
}

func (r *ExamPostgres) Create(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *ExamPostgres) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	var exam models.Exam
	err := r.db.WithContext(ctx).
		Preload("Discipline.Teachers").
		Preload("Room").
		First(&exam, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *ExamPostgres) HasLiveForDiscipline(ctx context.Context, disciplineID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Exam{}).
		Where("discipline_id = ? AND status <> ?", disciplineID, models.ExamRejected).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Decide is a conditional update: only a row still in PROPOSED matches, so a
// concurrent decision loses the race and sees zero rows affected.
func (r *ExamPostgres) Decide(ctx context.Context, id uint, status models.ExamStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Exam{}).
		Where("id = ? AND status = ?", id, models.ExamProposed).
		Updates(map[string]interface{}{"status": status, "decided_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

func (r *ExamPostgres) AssignRoom(ctx context.Context, id uint, roomID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Exam{}).
		Where("id = ? AND status = ?", id, models.ExamApproved).
		Update("room_id", roomID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ExamPostgres) CountByRoom(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Exam{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}

func (r *ExamPostgres) ListProposals(ctx context.Context) ([]repositories.ProposalRow, error) {
	var exams []models.Exam
	err := r.db.WithContext(ctx).
		Preload("Discipline.Teachers").
		Where("status = ?", models.ExamProposed).
		Order("exam_date ASC").
		Find(&exams).Error
	if err != nil {
		return nil, err
	}

	rows := make([]repositories.ProposalRow, 0, len(exams))
	for _, exam := range exams {
		rows = append(rows, repositories.ProposalRow{
			ExamID:         exam.ID,
			DisciplineID:   exam.DisciplineID,
			DisciplineName: exam.Discipline.Name,
			TeacherNames:   teacherNames(exam.Discipline.Teachers),
			ExamDate:       exam.ExamDate,
			ProposedAt:     exam.CreatedAt,
		})
	}
	return rows, nil
}

func (r *ExamPostgres) ListSchedule(ctx context.Context, filter repositories.ExamFilter) ([]repositories.ScheduleRow, error) {
	status := filter.Status
	if status == "" {
		status = models.ExamApproved
	}
	query := r.db.WithContext(ctx).
		Preload("Discipline.Teachers").
		Preload("Room").
		Where("status = ?", status).
		Order("exam_date ASC")
	if filter.DisciplineID != nil {
		query = query.Where("discipline_id = ?", *filter.DisciplineID)
	}
	if filter.From != nil {
		query = query.Where("exam_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("exam_date <= ?", *filter.To)
	}
	if filter.YearOfStudy != nil {
		query = query.Joins("JOIN disciplines ON disciplines.id = exams.discipline_id").
			Where("disciplines.year_of_study = ?", *filter.YearOfStudy)
	}

	var exams []models.Exam
	if err := query.Find(&exams).Error; err != nil {
		return nil, err
	}

	rows := make([]repositories.ScheduleRow, 0, len(exams))
	for _, exam := range exams {
		row := repositories.ScheduleRow{
			ExamID:         exam.ID,
			DisciplineID:   exam.DisciplineID,
			DisciplineName: exam.Discipline.Name,
			TeacherNames:   teacherNames(exam.Discipline.Teachers),
			ExamDate:       exam.ExamDate,
			YearOfStudy:    exam.Discipline.YearOfStudy,
			Specialization: exam.Discipline.Specialization,
		}
		if exam.Room != nil {
			name := exam.Room.Name
			row.RoomName = &name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func teacherNames(teachers []models.User) []string {
	names := make([]string, 0, len(teachers))
	for _, teacher := range teachers {
		names = append(names, teacher.FullName)
	}
	return names
}
