package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/usv-fiesc/exam-scheduler/internal/cache"
	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
	"github.com/usv-fiesc/exam-scheduler/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.BusinessValidator
	cache     *cache.CacheManager
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, v *validator.BusinessValidator, cm *cache.CacheManager) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: v,
		cache:     cm,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.Users().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the caller's own patch. Group and year are student
// fields; for other roles a request touching them is refused.
func (s *userService) UpdateProfile(ctx context.Context, userID string, req *ProfileUpdateRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if (req.HasStudentGroup || req.HasYearOfStudy) && !user.Role.IsStudentRole() {
		return nil, NewPermissionError(userID, "update profile", "group and year apply to student accounts only")
	}

	patch := repositories.UserDetailsPatch{
		FullName:        req.FullName,
		StudentGroup:    req.StudentGroup,
		SetStudentGroup: req.HasStudentGroup,
		YearOfStudy:     req.YearOfStudy,
		SetYearOfStudy:  req.HasYearOfStudy,
	}
	if err := s.repo.Users().UpdateDetails(ctx, userID, patch); err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	cache.SafeInvalidatePattern(ctx, s.cache.User, "id:"+userID+"*")
	return s.GetProfile(ctx, userID)
}

func (s *userService) List(ctx context.Context, filter repositories.UserFilter) ([]models.User, error) {
	return s.repo.Users().List(ctx, filter)
}

func (s *userService) Create(ctx context.Context, req *UserCreateRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.UserRole(req.Role),
		StudentGroup: req.StudentGroup,
		YearOfStudy:  req.YearOfStudy,
	}

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashed := string(hash)
		user.PasswordHash = &hashed
	}

	if err := s.repo.Users().Create(ctx, user); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) AdminUpdate(ctx context.Context, userID string, req *AdminUserUpdateRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	effectiveRole := user.Role
	if req.Role != nil {
		effectiveRole = models.UserRole(*req.Role)
	}
	if (req.HasStudentGroup || req.HasYearOfStudy) && !effectiveRole.IsStudentRole() {
		return nil, validator.ValidationErrors{{
			Field:   "student_group",
			Message: "group and year apply to student accounts only",
			Rule:    "role",
		}}
	}

	patch := repositories.AdminUserPatch{
		UserDetailsPatch: repositories.UserDetailsPatch{
			FullName:        req.FullName,
			StudentGroup:    req.StudentGroup,
			SetStudentGroup: req.HasStudentGroup,
			YearOfStudy:     req.YearOfStudy,
			SetYearOfStudy:  req.HasYearOfStudy,
		},
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		patch.Email = &email
	}
	if req.Role != nil {
		role := models.UserRole(*req.Role)
		patch.Role = &role
	}

	if err := s.repo.Users().AdminUpdate(ctx, userID, patch); err != nil {
		switch {
		case repositories.IsNotFound(err):
			return nil, ErrUserNotFound
		case repositories.IsDuplicateKey(err):
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	cache.SafeInvalidatePattern(ctx, s.cache.User, "id:"+userID+"*")
	s.logger.Info("user updated by admin", "user_id", userID)
	return s.GetProfile(ctx, userID)
}

func (s *userService) Delete(ctx context.Context, userID string) error {
	if err := s.repo.Users().Delete(ctx, userID); err != nil {
		if repositories.IsNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	cache.SafeInvalidatePattern(ctx, s.cache.User, "id:"+userID+"*")
	s.logger.Info("user deleted", "user_id", userID)
	return nil
}
