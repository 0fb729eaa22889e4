package entity

import (
	"github.com/uptrace/bun"
)

type Company struct {
	bun.BaseModel `bun:"table:companies"`

	BasicEntity
	Name string `json:"name" bun:"name"`

	// Job site coordinates. Geofencing is enforced only when both are set.
	Latitude  *float64 `json:"latitude" bun:"latitude"`
	Longitude *float64 `json:"longitude" bun:"longitude"`

	// GeofenceRadius in meters. Nil means the service default applies.
	GeofenceRadius *float64 `json:"geofence_radius" bun:"geofence_radius"`
}

// Geofenced reports whether clock-ins must pass location verification.
func (c Company) Geofenced() bool {
	return c.Latitude != nil && c.Longitude != nil
}
