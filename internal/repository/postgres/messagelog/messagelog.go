package messagelog

import (
	"context"
	"time"

	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/pkg/repository/postgresql"

	"github.com/pkg/errors"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// Create appends one message fact. Callers must treat failures as
// best-effort: a logging error never fails the business transaction.
func (r Repository) Create(ctx context.Context, detail *entity.MessageLog) error {
	detail.CreatedAt = time.Now()

	_, err := r.NewInsert().Model(detail).Returning("id").Exec(ctx, &detail.ID)
	if err != nil {
		return errors.Wrap(err, "creating message log")
	}

	return nil
}
