package pkg

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/usv-fiesc/exam-scheduler/internal/config"
	"github.com/usv-fiesc/exam-scheduler/internal/models"
)

// InitDatabase opens the Postgres connection, runs migrations and installs
// the constraint backing the one-live-exam-per-discipline rule.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	gormLevel := gormlogger.Warn
	if cfg.Environment == "development" {
		gormLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLevel),
		// Driver errors surface as gorm.ErrDuplicatedKey and friends so the
		// repositories never inspect pq error codes.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Discipline{},
		&models.DisciplineTeacher{},
		&models.ExamPeriod{},
		&models.Room{},
		&models.Exam{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Rejected proposals free the slot; everything else holds it. AutoMigrate
	// cannot express a partial unique index, so it is applied directly.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_exams_live_discipline ON exams (discipline_id) WHERE status <> 'REJECTED'",
	).Error; err != nil {
		return nil, fmt.Errorf("failed to create live exam index: %w", err)
	}

	return db, nil
}

// NewRedisClient builds a Redis client from the configured URL. A nil client
// is returned when caching is not configured.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	return redis.NewClient(opts), nil
}
