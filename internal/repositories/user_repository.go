package repositories

import (
	"context"

	"github.com/usv-fiesc/exam-scheduler/internal/models"
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	UpdateDetails(ctx context.Context, id string, patch UserDetailsPatch) error
	AdminUpdate(ctx context.Context, id string, patch AdminUserPatch) error
	Delete(ctx context.Context, id string) error
}
