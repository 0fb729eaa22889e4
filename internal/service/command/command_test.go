package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseShorthands(t *testing.T) {
	cases := map[string]Command{
		"1": ClockIn,
		"2": ClockOut,
		"3": Lunch,
		"?": Help,
	}

	for raw, want := range cases {
		got, ok := Parse(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParseSynonyms(t *testing.T) {
	cases := map[string]Command{
		"in":       ClockIn,
		"start":    ClockIn,
		"here":     ClockIn,
		"arrived":  ClockIn,
		"on site":  ClockIn,
		"begin":    ClockIn,
		"out":      ClockOut,
		"stop":     ClockOut,
		"leave":    ClockOut,
		"done":     ClockOut,
		"finished": ClockOut,
		"end":      ClockOut,
		"lunch":    Lunch,
		"break":    Lunch,
		"food":     Lunch,
		"eating":   Lunch,
		"meal":     Lunch,
		"help":     Help,
		"info":     Help,
	}

	for raw, want := range cases {
		got, ok := Parse(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParseNormalization(t *testing.T) {
	a, okA := Parse(" In ")
	b, okB := Parse("IN")
	c, okC := Parse("1")

	assert.True(t, okA)
	assert.True(t, okB)
	assert.True(t, okC)
	assert.Equal(t, ClockIn, a)
	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
}

func TestParseUnrecognized(t *testing.T) {
	for _, raw := range []string{"", "hello", "clockin please", "4", "lunchhh"} {
		_, ok := Parse(raw)
		assert.False(t, ok, raw)
	}
}
