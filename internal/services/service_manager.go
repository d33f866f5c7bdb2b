package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/usv-fiesc/exam-scheduler/internal/auth"
	"github.com/usv-fiesc/exam-scheduler/internal/cache"
	"github.com/usv-fiesc/exam-scheduler/internal/events"
	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
	"github.com/usv-fiesc/exam-scheduler/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	EnableDebugLogging bool
	LogLevel           slog.Level
	DefaultTimeout     time.Duration
}

func DefaultServiceManagerConfig() ServiceManagerConfig {
	return ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,
		DefaultTimeout:     30 * time.Second,
	}
}

// serviceManager implements ServiceManager
type serviceManager struct {
	repo      repositories.Repository
	verifier  *auth.TokenVerifier
	logger    *slog.Logger
	validator *validator.BusinessValidator
	cache     *cache.CacheManager
	publisher events.EventPublisher
	config    ServiceManagerConfig

	identityService   IdentityService
	examService       ExamService
	disciplineService DisciplineService
	periodService     PeriodService
	roomService       RoomService
	userService       UserService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, verifier *auth.TokenVerifier, logger *slog.Logger, v *validator.BusinessValidator, cm *cache.CacheManager, publisher events.EventPublisher, config ServiceManagerConfig) ServiceManager {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &serviceManager{
		repo:      repo,
		verifier:  verifier,
		logger:    logger,
		validator: v,
		cache:     cm,
		publisher: publisher,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.identityService = NewIdentityService(sm.repo, sm.verifier, sm.logger, sm.validator)
	sm.examService = NewExamService(sm.repo, sm.logger, sm.validator, sm.cache, sm.publisher)
	sm.disciplineService = NewDisciplineService(sm.repo, sm.logger, sm.validator, sm.cache)
	sm.periodService = NewPeriodService(sm.repo, sm.logger, sm.validator, sm.cache)
	sm.roomService = NewRoomService(sm.repo, sm.logger, sm.validator, sm.cache)
	sm.userService = NewUserService(sm.repo, sm.logger, sm.validator, sm.cache)

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")
	return nil
}

func (sm *serviceManager) Identity() IdentityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.identityService
}

func (sm *serviceManager) Exam() ExamService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.examService
}

func (sm *serviceManager) Discipline() DisciplineService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.disciplineService
}

func (sm *serviceManager) Period() PeriodService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.periodService
}

func (sm *serviceManager) Room() RoomService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.roomService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	// Cache is optional, report but do not fail
	if err := sm.cache.HealthCheck(ctx); err != nil {
		sm.logger.Warn("cache health check failed", "error", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}
	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")
	return nil
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
