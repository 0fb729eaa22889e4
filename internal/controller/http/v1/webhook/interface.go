package webhook

import (
	"context"

	"timeclock/backend/internal/entity"
	"timeclock/backend/internal/service/command"
	"timeclock/backend/internal/service/shift"
)

type Gateway interface {
	ResolveInbound(ctx context.Context, platform, address string) (entity.Worker, error)
	LogInbound(ctx context.Context, w *entity.Worker, platform, from, body, externalID string)
	LogOutbound(ctx context.Context, w *entity.Worker, platform, to, body, status, externalID string)
	Reply(ctx context.Context, w *entity.Worker, platform, to, body string)
}

type Shift interface {
	Process(ctx context.Context, w entity.Worker, cmd command.Command, platform string, bypassGeofence bool) shift.ProcessResult
}

type Deduper interface {
	Seen(ctx context.Context, platform, messageID string) bool
}

// CallbackAcker clears the progress spinner on a pressed Telegram button.
type CallbackAcker interface {
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}
