package user

import (
	"context"
	"database/sql"

	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/pkg/repository/postgresql"
	"timeclock/backend/internal/repository/postgres"

	"github.com/pkg/errors"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// GetByEmail is used by sign-in and therefore runs without claims.
func (r Repository) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	var detail entity.User

	err := r.NewSelect().Model(&detail).
		Where("email = ?", email).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, postgres.ErrNotFound
	}
	if err != nil {
		return entity.User{}, errors.Wrap(err, "selecting user by email")
	}

	return detail, nil
}

func (r Repository) GetById(ctx context.Context, id int) (entity.User, error) {
	var detail entity.User

	err := r.NewSelect().Model(&detail).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, postgres.ErrNotFound
	}
	if err != nil {
		return entity.User{}, errors.Wrap(err, "selecting user by id")
	}

	return detail, nil
}
