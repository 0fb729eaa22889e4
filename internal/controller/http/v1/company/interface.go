package company

import (
	"context"

	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/repository/postgres/company"
)

type Company interface {
	GetInfo(ctx context.Context) (entity.Company, error)
	UpdateAll(ctx context.Context, request company.UpdateRequest) error
}
