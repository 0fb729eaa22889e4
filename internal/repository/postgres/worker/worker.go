package worker

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
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

func (r Repository) GetById(ctx context.Context, id int) (entity.Worker, error) {
	var detail entity.Worker

	err := r.NewSelect().Model(&detail).Where("id = ? AND deleted_at IS NULL", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Worker{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}

	return detail, err
}

// GetByPhone resolves an inbound SMS sender to an active worker. The number
// must already be normalized by the gateway.
func (r Repository) GetByPhone(ctx context.Context, phone string) (entity.Worker, error) {
	return r.getByIdentity(ctx, "phone", phone)
}

func (r Repository) GetByWhatsappID(ctx context.Context, id string) (entity.Worker, error) {
	return r.getByIdentity(ctx, "whatsapp_id", id)
}

func (r Repository) GetByTelegramID(ctx context.Context, id string) (entity.Worker, error) {
	return r.getByIdentity(ctx, "telegram_id", id)
}

func (r Repository) GetByMessengerID(ctx context.Context, id string) (entity.Worker, error) {
	return r.getByIdentity(ctx, "messenger_id", id)
}

func (r Repository) getByIdentity(ctx context.Context, column, value string) (entity.Worker, error) {
	var detail entity.Worker

	err := r.NewSelect().
		Model(&detail).
		Where(fmt.Sprintf("%s = ? AND active = true AND deleted_at IS NULL", column), value).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Worker{}, postgres.ErrNotFound
	}
	if err != nil {
		return entity.Worker{}, errors.Wrapf(err, "selecting worker by %s", column)
	}

	return detail, nil
}

// GetDetail is the claims-checked read for the admin API.
func (r Repository) GetDetail(ctx context.Context, id int) (entity.Worker, error) {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return entity.Worker{}, err
	}

	var detail entity.Worker

	err = r.NewSelect().Model(&detail).
		Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, claims.CompanyID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Worker{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}

	return detail, err
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin, auth.RoleDashboard)
	if err != nil {
		return nil, 0, err
	}

	whereQuery := fmt.Sprintf(`
			WHERE
				w.deleted_at IS NULL AND w.company_id = %d
			`, claims.CompanyID)

	if filter.Search != nil {
		search := strings.Replace(*filter.Search, "'", "''", -1)

		whereQuery += fmt.Sprintf(` AND
		(w.first_name ilike '%s' OR w.last_name ilike '%s' OR w.phone ilike '%s')`,
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}
	orderQuery := "ORDER BY w.created_at desc"

	var limitQuery, offsetQuery string

	if filter.Page != nil && filter.Limit != nil {
		offset := (*filter.Page - 1) * (*filter.Limit)
		filter.Offset = &offset
	}

	if filter.Limit != nil {
		limitQuery += fmt.Sprintf(" LIMIT %d", *filter.Limit)
	}

	if filter.Offset != nil {
		offsetQuery += fmt.Sprintf(" OFFSET %d", *filter.Offset)
	}

	query := fmt.Sprintf(`
		SELECT
			w.id,
			w.first_name,
			w.last_name,
			w.phone,
			w.telegram_id,
			w.messenger_id,
			w.whatsapp_id,
			w.preferred_communication,
			w.active
		FROM workers w
		%s %s %s %s
	`, whereQuery, orderQuery, limitQuery, offsetQuery)

	rows, err := r.QueryContext(ctx, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting workers"), http.StatusInternalServerError)
	}

	var list []GetListResponse

	for rows.Next() {
		var detail GetListResponse
		if err = rows.Scan(
			&detail.ID,
			&detail.FirstName,
			&detail.LastName,
			&detail.Phone,
			&detail.TelegramID,
			&detail.MessengerID,
			&detail.WhatsappID,
			&detail.PreferredCommunication,
			&detail.Active); err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning worker list"), http.StatusBadRequest)
		}

		list = append(list, detail)
	}

	countQuery := fmt.Sprintf(`
		SELECT
			count(w.id)
		FROM workers w
		%s
	`, whereQuery)

	count := 0
	if err = r.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning worker count"), http.StatusInternalServerError)
	}

	return list, count, nil
}

func (r Repository) Create(ctx context.Context, request CreateRequest) (entity.Worker, error) {
	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return entity.Worker{}, err
	}

	if err := r.ValidateStruct(&request, "FirstName", "Phone"); err != nil {
		return entity.Worker{}, err
	}

	active := true
	detail := entity.Worker{
		CompanyID:              claims.CompanyID,
		FirstName:              request.FirstName,
		LastName:               request.LastName,
		Phone:                  request.Phone,
		WhatsappID:             request.WhatsappID,
		TelegramID:             request.TelegramID,
		MessengerID:            request.MessengerID,
		PreferredCommunication: request.PreferredCommunication,
		Active:                 &active,
	}
	detail.CreatedAt = time.Now()
	detail.CreatedBy = &claims.UserId

	_, err = r.NewInsert().Model(&detail).Returning("id").Exec(ctx, &detail.ID)
	if err != nil {
		return entity.Worker{}, web.NewRequestError(errors.Wrap(err, "creating worker"), http.StatusBadRequest)
	}

	return detail, nil
}

func (r Repository) UpdateColumns(ctx context.Context, request UpdateRequest) error {
	if err := r.ValidateStruct(&request, "ID"); err != nil {
		return err
	}

	claims, err := r.CheckClaims(ctx, auth.RoleAdmin)
	if err != nil {
		return err
	}

	q := r.NewUpdate().Table("workers").
		Where("deleted_at IS NULL AND id = ? AND company_id = ?", request.ID, claims.CompanyID)

	if request.FirstName != nil {
		q.Set("first_name = ?", request.FirstName)
	}
	if request.LastName != nil {
		q.Set("last_name = ?", request.LastName)
	}
	if request.Phone != nil {
		q.Set("phone = ?", request.Phone)
	}
	if request.WhatsappID != nil {
		q.Set("whatsapp_id = ?", request.WhatsappID)
	}
	if request.TelegramID != nil {
		q.Set("telegram_id = ?", request.TelegramID)
	}
	if request.MessengerID != nil {
		q.Set("messenger_id = ?", request.MessengerID)
	}
	if request.PreferredCommunication != nil {
		q.Set("preferred_communication = ?", request.PreferredCommunication)
	}
	if request.Active != nil {
		q.Set("active = ?", request.Active)
	}
	q.Set("updated_at = ?", time.Now())
	q.Set("updated_by = ?", claims.UserId)

	_, err = q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "updating worker"), http.StatusBadRequest)
	}

	return nil
}

func (r Repository) Delete(ctx context.Context, id int) error {
	return r.DeleteRow(ctx, "workers", id)
}
