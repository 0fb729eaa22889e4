// Package command maps free-form worker messages to canonical time commands.
// Channel specific structured inputs (button payloads, callback data) are
// translated to this vocabulary by the webhook controllers before parsing.
package command

import "strings"

type Command string

const (
	ClockIn  Command = "clock_in"
	ClockOut Command = "clock_out"
	Lunch    Command = "lunch"
	Help     Command = "help"
)

var vocabulary = map[string]Command{
	"1": ClockIn,
	"2": ClockOut,
	"3": Lunch,

	"in":      ClockIn,
	"start":   ClockIn,
	"here":    ClockIn,
	"arrived": ClockIn,
	"on site": ClockIn,
	"begin":   ClockIn,

	"out":      ClockOut,
	"stop":     ClockOut,
	"leave":    ClockOut,
	"done":     ClockOut,
	"finished": ClockOut,
	"end":      ClockOut,

	"lunch":  Lunch,
	"break":  Lunch,
	"food":   Lunch,
	"eating": Lunch,
	"meal":   Lunch,

	"help": Help,
	"?":    Help,
	"info": Help,
}

// Parse normalizes the raw text and returns the matching canonical command.
// Unrecognized input returns ok=false and the caller must not mutate state.
func Parse(raw string) (Command, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	cmd, ok := vocabulary[normalized]
	return cmd, ok
}
