package worker

import (
	"context"

	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/repository/postgres/worker"
)

type Worker interface {
	GetDetail(ctx context.Context, id int) (entity.Worker, error)
	GetList(ctx context.Context, filter worker.Filter) ([]worker.GetListResponse, int, error)
	Create(ctx context.Context, request worker.CreateRequest) (entity.Worker, error)
	UpdateColumns(ctx context.Context, request worker.UpdateRequest) error
	Delete(ctx context.Context, id int) error
}
