package company

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"timeclock/backend/foundation/web"
	"timeclock/backend/internal/auth"
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

// GetById is used on the webhook path and therefore takes no claims.
func (r Repository) GetById(ctx context.Context, id int) (entity.Company, error) {
	var detail entity.Company

	err := r.NewSelect().Model(&detail).Where("id = ? AND deleted_at IS NULL", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Company{}, postgres.ErrNotFound
	}
	if err != nil {
		return entity.Company{}, errors.Wrap(err, "selecting company")
	}

	return detail, nil
}

func (r Repository) GetInfo(ctx context.Context) (entity.Company, error) {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin, auth.RoleDashboard)
	if err != nil {
		return entity.Company{}, err
	}

	detail, err := r.GetById(ctx, claims.CompanyID)
	if err != nil {
		return entity.Company{}, &web.Error{
			Err:    errors.New("company data not found!"),
			Status: http.StatusNotFound,
		}
	}

	return detail, nil
}

func (r Repository) UpdateAll(ctx context.Context, request UpdateRequest) error {
	if err := r.ValidateStruct(&request, "Name"); err != nil {
		return err
	}

	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return err
	}

	q := r.NewUpdate().Table("companies").
		Where("deleted_at IS NULL AND id = ?", claims.CompanyID)
	q.Set("name = ?", request.Name)
	q.Set("latitude = ?", request.Latitude)
	q.Set("longitude = ?", request.Longitude)
	q.Set("geofence_radius = ?", request.GeofenceRadius)
	q.Set("updated_at = ?", time.Now())
	q.Set("updated_by = ?", claims.UserId)

	_, err = q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "updating company"), http.StatusBadRequest)
	}

	return nil
}
