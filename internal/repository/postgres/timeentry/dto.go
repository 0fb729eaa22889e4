package timeentry

import (
	"encoding/json"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
)

type Filter struct {
	Limit    *int
	Offset   *int
	Page     *int
	WorkerID *int
	Date     *string
}

type GetListResponse struct {
	ID         int        `json:"id"`
	WorkerID   int        `json:"worker_id"`
	FirstName  *string    `json:"first_name"`
	LastName   *string    `json:"last_name"`
	WorkDay    *date.Date `json:"work_day"`
	ClockIn    *time.Time `json:"clock_in"`
	ClockOut   *time.Time `json:"clock_out,omitempty"`
	LunchOut   *time.Time `json:"lunch_out,omitempty"`
	LunchIn    *time.Time `json:"lunch_in,omitempty"`
	Source     *string    `json:"source"`
	TotalHours string     `json:"total_hours"`
}

func (r *GetListResponse) MarshalJSON() ([]byte, error) {
	type Alias GetListResponse
	aux := &struct {
		ClockIn  string `json:"clock_in,omitempty"`
		ClockOut string `json:"clock_out,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	if r.ClockIn != nil {
		aux.ClockIn = r.ClockIn.UTC().Format("15:04")
	}
	if r.ClockOut != nil {
		aux.ClockOut = r.ClockOut.UTC().Format("15:04")
	}

	return json.Marshal(aux)
}

type CorrectionRequest struct {
	EntryID      int     `json:"entry_id" form:"entry_id"`
	ClockIn      string  `json:"clock_in" form:"clock_in" validate:"required"`
	ClockOut     *string `json:"clock_out" form:"clock_out"`
	LunchOut     *string `json:"lunch_out" form:"lunch_out"`
	LunchIn      *string `json:"lunch_in" form:"lunch_in"`
	BreakMinutes *int    `json:"break_minutes" form:"break_minutes"`
}
