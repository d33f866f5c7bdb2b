package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/usv-fiesc/exam-scheduler/internal/models"
)

type PeriodPostgres struct {
	db *gorm.DB
}

func (r *PeriodPostgres) Create(ctx context.Context, period *models.ExamPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *PeriodPostgres) GetByID(ctx context.Context, id uint) (*models.ExamPeriod, error) {
	var period models.ExamPeriod
	if err := r.db.WithContext(ctx).First(&period, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *PeriodPostgres) List(ctx context.Context) ([]models.ExamPeriod, error) {
	var periods []models.ExamPeriod
	err := r.db.WithContext(ctx).Order("start_date ASC").Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *PeriodPostgres) SetActive(ctx context.Context, id uint, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.ExamPeriod{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PeriodPostgres) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ExamPeriod{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PeriodPostgres) AnyActiveCovering(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ExamPeriod{}).
		Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, date, date).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
