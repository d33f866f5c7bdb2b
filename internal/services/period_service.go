package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/usv-fiesc/exam-scheduler/internal/cache"
	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
	"github.com/usv-fiesc/exam-scheduler/internal/validator"
)

type periodService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.BusinessValidator
	cache     *cache.CacheManager
}

func NewPeriodService(repo repositories.Repository, logger *slog.Logger, v *validator.BusinessValidator, cm *cache.CacheManager) PeriodService {
	return &periodService{
		repo:      repo,
		logger:    logger,
		validator: v,
		cache:     cm,
	}
}

func (s *periodService) Create(ctx context.Context, req *PeriodCreateRequest) (*models.ExamPeriod, error) {
	if errs := s.validator.ValidatePeriodCreate(req); errs.HasErrors() {
		return nil, errs
	}

	start, _ := time.Parse(validator.DateLayout, req.StartDate)
	end, _ := time.Parse(validator.DateLayout, req.EndDate)

	period := &models.ExamPeriod{
		StartDate: start,
		EndDate:   end,
		IsActive:  req.IsActive,
	}
	if err := s.repo.Periods().Create(ctx, period); err != nil {
		return nil, err
	}

	cache.SafeInvalidatePattern(ctx, s.cache.Catalog, "period:*")
	s.logger.Info("exam period created",
		"period_id", period.ID,
		"start_date", req.StartDate,
		"end_date", req.EndDate,
		"is_active", period.IsActive)
	return period, nil
}

func (s *periodService) List(ctx context.Context) ([]models.ExamPeriod, error) {
	var periods []models.ExamPeriod
	err := s.cache.Catalog.CacheOrExecute(ctx, "period:list", &periods, cache.CatalogCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Periods().List(ctx)
	})
	return periods, err
}

func (s *periodService) SetActive(ctx context.Context, id uint, active bool) (*models.ExamPeriod, error) {
	if err := s.repo.Periods().SetActive(ctx, id, active); err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}

	cache.SafeInvalidatePattern(ctx, s.cache.Catalog, "period:*")
	s.logger.Info("exam period toggled", "period_id", id, "is_active", active)
	return s.repo.Periods().GetByID(ctx, id)
}

func (s *periodService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Periods().Delete(ctx, id); err != nil {
		if repositories.IsNotFound(err) {
			return ErrPeriodNotFound
		}
		return err
	}
	cache.SafeInvalidatePattern(ctx, s.cache.Catalog, "period:*")
	return nil
}
