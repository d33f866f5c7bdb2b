package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/usv-fiesc/exam-scheduler/internal/cache"
	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
	"github.com/usv-fiesc/exam-scheduler/internal/validator"
)

type roomService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.BusinessValidator
	cache     *cache.CacheManager
}

func NewRoomService(repo repositories.Repository, logger *slog.Logger, v *validator.BusinessValidator, cm *cache.CacheManager) RoomService {
	return &roomService{
		repo:      repo,
		logger:    logger,
		validator: v,
		cache:     cm,
	}
}

func (s *roomService) Create(ctx context.Context, req *RoomCreateRequest) (*models.Room, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	room := &models.Room{
		Name:         strings.TrimSpace(req.Name),
		ShortName:    req.ShortName,
		BuildingName: req.BuildingName,
		Capacity:     req.Capacity,
	}
	if err := s.repo.Rooms().Create(ctx, room); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, validator.ValidationErrors{{
				Field:   "name",
				Message: "a room with this name already exists",
				Value:   room.Name,
				Rule:    "unique",
			}}
		}
		return nil, err
	}

	cache.SafeInvalidatePattern(ctx, s.cache.Catalog, "room:*")
	s.logger.Info("room created", "room_id", room.ID, "name", room.Name)
	return room, nil
}

func (s *roomService) GetByID(ctx context.Context, id uint) (*models.Room, error) {
	room, err := s.repo.Rooms().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *roomService) List(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := s.cache.Catalog.CacheOrExecute(ctx, "room:list", &rooms, cache.CatalogCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Rooms().List(ctx)
	})
	return rooms, err
}

func (s *roomService) Update(ctx context.Context, id uint, req *RoomUpdateRequest) (*models.Room, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	room, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		room.Name = strings.TrimSpace(*req.Name)
	}
	if req.ShortName != nil {
		room.ShortName = req.ShortName
	}
	if req.BuildingName != nil {
		room.BuildingName = req.BuildingName
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}

	if err := s.repo.Rooms().Update(ctx, room); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, validator.ValidationErrors{{
				Field:   "name",
				Message: "a room with this name already exists",
				Value:   room.Name,
				Rule:    "unique",
			}}
		}
		return nil, err
	}

	cache.SafeInvalidatePattern(ctx, s.cache.Catalog, "room:*")
	return room, nil
}

func (s *roomService) Delete(ctx context.Context, id uint) error {
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		count, err := tx.Exams().CountByRoom(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrRoomHasExams
		}
		if err := tx.Rooms().Delete(ctx, id); err != nil {
			if repositories.IsNotFound(err) {
				return ErrRoomNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.SafeInvalidatePattern(ctx, s.cache.Catalog, "room:*")
	s.logger.Info("room deleted", "room_id", id)
	return nil
}
