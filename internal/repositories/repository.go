package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates the per-entity repositories. Service code depends on
// this interface only; the postgres package provides the implementation.
type Repository interface {
	Users() UserRepository
	Disciplines() DisciplineRepository
	Exams() ExamRepository
	Periods() PeriodRepository
	Rooms() RoomRepository

	// WithTransaction runs fn against a Repository whose sub-repositories all
	// share one database transaction. fn returning an error rolls back,
	// otherwise the transaction commits.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// Requires the gorm error translator to be enabled on the connection.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
