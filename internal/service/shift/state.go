package shift

import "timeclock/backend/internal/entity"

// State is the worker's shift position for the current day, derived from the
// nullable timestamps of the day's entry instead of being stored anywhere.
type State int

const (
	NotClockedIn State = iota
	ClockedIn
	OnLunch
	LunchDone
)

func (s State) String() string {
	switch s {
	case ClockedIn:
		return "clocked_in"
	case OnLunch:
		return "on_lunch"
	case LunchDone:
		return "lunch_done"
	default:
		return "not_clocked_in"
	}
}

// Derive reconstructs the tagged state from today's entry. A closed or missing
// entry means the worker is not clocked in; LunchDone behaves like ClockedIn
// for clock-out purposes but guards against a second lunch.
func Derive(e *entity.TimeEntry) State {
	if e == nil || e.ClockOut != nil {
		return NotClockedIn
	}
	if e.LunchOut == nil {
		return ClockedIn
	}
	if e.LunchIn == nil {
		return OnLunch
	}
	return LunchDone
}
