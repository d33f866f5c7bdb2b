package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
)

type DisciplinePostgres struct {
	db *gorm.DB
}

func (r *DisciplinePostgres) Create(ctx context.Context, discipline *models.Discipline) error {
	return r.db.WithContext(ctx).Create(discipline).Error
}

func (r *DisciplinePostgres) GetByID(ctx context.Context, id uint) (*models.Discipline, error) {
	var discipline models.Discipline
	err := r.db.WithContext(ctx).Preload("Teachers").First(&discipline, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &discipline, nil
}

func (r *DisciplinePostgres) GetByName(ctx context.Context, name string) (*models.Discipline, error) {
	var discipline models.Discipline
	err := r.db.WithContext(ctx).First(&discipline, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &discipline, nil
}

func (r *DisciplinePostgres) List(ctx context.Context, filter repositories.DisciplineFilter) ([]models.Discipline, error) {
	query := r.db.WithContext(ctx).Preload("Teachers").Order("name ASC")
	if filter.YearOfStudy != nil {
		query = query.Where("year_of_study = ?", *filter.YearOfStudy)
	}
	if filter.Specialization != "" {
		query = query.Where("specialization = ?", filter.Specialization)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var disciplines []models.Discipline
	if err := query.Find(&disciplines).Error; err != nil {
		return nil, err
	}
	return disciplines, nil
}

func (r *DisciplinePostgres) Update(ctx context.Context, discipline *models.Discipline) error {
	return r.db.WithContext(ctx).Omit("Teachers").Save(discipline).Error
}

func (r *DisciplinePostgres) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Discipline{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DisciplinePostgres) ReplaceTeachers(ctx context.Context, disciplineID uint, teacherIDs []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("discipline_id = ?", disciplineID).Delete(&models.DisciplineTeacher{}).Error; err != nil {
		return err
	}
	if len(teacherIDs) == 0 {
		return nil
	}
	links := make([]models.DisciplineTeacher, 0, len(teacherIDs))
	for _, teacherID := range teacherIDs {
		links = append(links, models.DisciplineTeacher{DisciplineID: disciplineID, TeacherID: teacherID})
	}
	return db.Create(&links).Error
}

func (r *DisciplinePostgres) IsTeacherAssigned(ctx context.Context, disciplineID uint, teacherID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DisciplineTeacher{}).
		Where("discipline_id = ? AND teacher_id = ?", disciplineID, teacherID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DisciplinePostgres) ListForTeacher(ctx context.Context, teacherID string) ([]repositories.TeacherDiscipline, error) {
	var disciplines []models.Discipline
	err := r.db.WithContext(ctx).
		Joins("JOIN discipline_teachers dt ON dt.discipline_id = disciplines.id").
		Where("dt.teacher_id = ?", teacherID).
		Order("disciplines.name ASC").
		Find(&disciplines).Error
	if err != nil {
		return nil, err
	}

	if len(disciplines) == 0 {
		return []repositories.TeacherDiscipline{}, nil
	}

	// One batched read covers every discipline; at most one live exam can
	// exist per discipline.
	ids := make([]uint, 0, len(disciplines))
	for _, discipline := range disciplines {
		ids = append(ids, discipline.ID)
	}

	var exams []models.Exam
	err = r.db.WithContext(ctx).
		Where("discipline_id IN ? AND status <> ?", ids, models.ExamRejected).
		Find(&exams).Error
	if err != nil {
		return nil, err
	}

	liveByDiscipline := make(map[uint]models.Exam, len(exams))
	for _, exam := range exams {
		liveByDiscipline[exam.DisciplineID] = exam
	}

	result := make([]repositories.TeacherDiscipline, 0, len(disciplines))
	for _, discipline := range disciplines {
		entry := repositories.TeacherDiscipline{Discipline: discipline}
		if exam, ok := liveByDiscipline[discipline.ID]; ok {
			id := exam.ID
			status := exam.Status
			date := exam.ExamDate
			entry.ExamID = &id
			entry.ExamStatus = &status
			entry.ExamDate = &date
		}
		result = append(result, entry)
	}
	return result, nil
}
