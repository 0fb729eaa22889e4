package verification

import (
	"context"

	"timeclock/backend/internal/service/geofence"
)

type Verifier interface {
	Verify(ctx context.Context, token string, lat, lng float64) (geofence.Result, error)
}
