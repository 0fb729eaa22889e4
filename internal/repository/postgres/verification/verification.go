package verification

import (
	"context"
	"database/sql"
	"time"

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

func (r Repository) Create(ctx context.Context, detail *entity.LocationVerification) error {
	detail.CreatedAt = time.Now()

	_, err := r.NewInsert().Model(detail).Returning("id").Exec(ctx, &detail.ID)
	if err != nil {
		return errors.Wrap(err, "creating location verification")
	}

	return nil
}

func (r Repository) GetByToken(ctx context.Context, token string) (entity.LocationVerification, error) {
	var detail entity.LocationVerification

	err := r.NewSelect().Model(&detail).Where("token = ?", token).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.LocationVerification{}, postgres.ErrNotFound
	}
	if err != nil {
		return entity.LocationVerification{}, errors.Wrap(err, "selecting location verification")
	}

	return detail, nil
}

// SetStatus moves a token to a terminal state. The pending guard keeps the
// consumption single-shot even under a duplicate verify request.
func (r Repository) SetStatus(ctx context.Context, id int, status string) error {
	q := r.NewUpdate().Table("location_verifications").
		Where("id = ? AND status = ?", id, entity.VerificationPending)
	q.Set("status = ?", status)
	q.Set("updated_at = ?", time.Now())

	res, err := q.Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "updating location verification status")
	}

	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		return errors.New("verification no longer pending")
	}

	return nil
}
