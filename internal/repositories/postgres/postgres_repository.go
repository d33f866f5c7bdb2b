package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
)

// PostgresRepository binds every sub-repository to one *gorm.DB handle, which
// is either the root connection pool or an open transaction.
type PostgresRepository struct {
	db          *gorm.DB
	users       *UserPostgres
	disciplines *DisciplinePostgres
	exams       *ExamPostgres
	periods     *PeriodPostgres
	rooms       *RoomPostgres
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{
		db:          db,
		users:       &UserPostgres{db: db},
		disciplines: &DisciplinePostgres{db: db},
		exams:       &ExamPostgres{db: db},
		periods:     &PeriodPostgres{db: db},
		rooms:       &RoomPostgres{db: db},
	}
}

func (r *PostgresRepository) Users() repositories.UserRepository { return r.users }

func (r *PostgresRepository) Disciplines() repositories.DisciplineRepository {
	return r.disciplines
}

func (r *PostgresRepository) Exams() repositories.ExamRepository { return r.exams }

func (r *PostgresRepository) Periods() repositories.PeriodRepository { return r.periods }

func (r *PostgresRepository) Rooms() repositories.RoomRepository { return r.rooms }

// WithTransaction runs fn against a repository whose handle is a single
// transaction, so every sub-repository call inside fn shares it.
func (r *PostgresRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewPostgresRepository(tx))
	})
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
