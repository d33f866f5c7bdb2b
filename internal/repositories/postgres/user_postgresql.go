package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
)

type UserPostgres struct {
	db *gorm.DB
}

func (r *UserPostgres) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserPostgres) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgres) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgres) List(ctx context.Context, filter repositories.UserFilter) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Order("full_name ASC")
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.StudentGroup != "" {
		query = query.Where("student_group = ?", filter.StudentGroup)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserPostgres) UpdateDetails(ctx context.Context, id string, patch repositories.UserDetailsPatch) error {
	updates := detailUpdates(patch)
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserPostgres) AdminUpdate(ctx context.Context, id string, patch repositories.AdminUserPatch) error {
	updates := detailUpdates(patch.UserDetailsPatch)
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.Role != nil {
		updates["role"] = *patch.Role
	}
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// detailUpdates maps a patch onto fixed column names. Only fields whose Set
// flag (or pointer) is raised appear in the map, so absent fields stay
// untouched and a raised flag with a nil pointer clears the column.
func detailUpdates(patch repositories.UserDetailsPatch) map[string]interface{} {
	updates := map[string]interface{}{}
	if patch.FullName != nil {
		updates["full_name"] = *patch.FullName
	}
	if patch.SetStudentGroup {
		updates["student_group"] = patch.StudentGroup
	}
	if patch.SetYearOfStudy {
		updates["year_of_study"] = patch.YearOfStudy
	}
	return updates
}
