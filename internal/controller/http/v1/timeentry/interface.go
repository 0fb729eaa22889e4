package timeentry

import (
	"context"

	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/repository/postgres/timeentry"
)

type TimeEntry interface {
	GetById(ctx context.Context, id int) (entity.TimeEntry, error)
	GetList(ctx context.Context, filter timeentry.Filter) ([]timeentry.GetListResponse, int, error)
	Correct(ctx context.Context, request timeentry.CorrectionRequest) (entity.TimeEntry, error)
}
