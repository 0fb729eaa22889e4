package entity

import (
	"time"

	"github.com/uptrace/bun"
)

type TimeEntry struct {
	bun.BaseModel `bun:"table:time_entries"`

	BasicEntity
	WorkerID  int    `json:"worker_id" bun:"worker_id"`
	CompanyID int    `json:"company_id" bun:"company_id"`
	WorkDay   string `json:"work_day" bun:"work_day"`

	ClockIn  time.Time  `json:"clock_in" bun:"clock_in"`
	ClockOut *time.Time `json:"clock_out" bun:"clock_out"`
	LunchOut *time.Time `json:"lunch_out" bun:"lunch_out"`
	LunchIn  *time.Time `json:"lunch_in" bun:"lunch_in"`

	BreakMinutes *int    `json:"break_minutes" bun:"break_minutes"`
	Source       *string `json:"source" bun:"source"`

	// Corrections never mutate history: a superseding row is inserted and the
	// old one is flagged.
	IsCorrection     bool `json:"is_correction" bun:"is_correction"`
	CorrectedEntryID *int `json:"corrected_entry_id" bun:"corrected_entry_id"`
}

// Open reports whether this entry is a shift still in progress.
func (e TimeEntry) Open() bool {
	return e.ClockOut == nil
}
