package company

type UpdateRequest struct {
	ID             int      `json:"id" form:"id"`
	Name           string   `json:"name" form:"name" validate:"required"`
	Latitude       *float64 `json:"latitude" form:"latitude"`
	Longitude      *float64 `json:"longitude" form:"longitude"`
	GeofenceRadius *float64 `json:"geofence_radius" form:"geofence_radius"`
}
