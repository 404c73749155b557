package commandService

import (
	"testing"
	"time"

	"avril/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		in   string
		want entity.AlarmSpec
		ok   bool
	}{
		{"7 30 am", entity.AlarmSpec{Hours: 7, Minutes: 30}, true},
		{"7:30am", entity.AlarmSpec{Hours: 7, Minutes: 30}, true},
		{"07:30", entity.AlarmSpec{Hours: 7, Minutes: 30}, true},
		{"7:30 A.M.", entity.AlarmSpec{Hours: 7, Minutes: 30}, true},
		{"7 pm", entity.AlarmSpec{Hours: 19, Minutes: 0}, true},
		{"12 am", entity.AlarmSpec{Hours: 0, Minutes: 0}, true},
		{"12:15 pm", entity.AlarmSpec{Hours: 12, Minutes: 15}, true},
		{"19 05", entity.AlarmSpec{Hours: 19, Minutes: 5}, true},
		{"25:00", entity.AlarmSpec{}, false},
		{"banana", entity.AlarmSpec{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseTime(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseDuration(t *testing.T) {
	cases := map[string]int{
		"5 minutes":             300,
		"1 hour and 30 minutes": 5400,
		"2 and 15":              8100,
		"half an hour":          1800,
		"an hour and a half":    5400,
		"2 and a half hours":    9000,
		"90 seconds":            90,
		"five minutes":          300,
		"10":                    600,
		"1 min 30 sec":          90,
	}
	for in, want := range cases {
		got, ok := ParseDuration(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseDuration("soon")
	assert.False(t, ok)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "5 minutes", FormatDuration(300))
	assert.Equal(t, "1 hour and 30 minutes", FormatDuration(5400))
	assert.Equal(t, "1 hour, 1 minute and 1 second", FormatDuration(3661))
}

func TestIsWakePhrase(t *testing.T) {
	cases := map[string]bool{
		"hello there":          true,
		"Hello!":               true,
		"yellow":               false,
		"wake up now":          true,
		"say hello to her":     true,
		"hey Avril":            true,
		"hey avril what time":  true,
		"well hey avril there": true,
		"hey siri":             false,
		"othello":              false,
		"":                     false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsWakePhrase(in, "Avril"), in)
	}
}

func TestParseDay(t *testing.T) {
	day, rest := ParseDay("on friday at 9 am")
	assert.Equal(t, entity.DaySpec{Kind: entity.DayWeekday, Weekday: time.Friday}, day)
	assert.Equal(t, "9 am", rest)

	day, rest = ParseDay("tomorrow 3 pm")
	assert.Equal(t, entity.DayTomorrow, day.Kind)
	assert.Equal(t, "3 pm", rest)

	day, rest = ParseDay("3 pm")
	assert.Equal(t, entity.DayAny, day.Kind)
	assert.Equal(t, "3 pm", rest)
}

func TestSplitReminder(t *testing.T) {
	text, day, spec, ok := splitReminder("call mom at 3 pm")
	assert.True(t, ok)
	assert.Equal(t, "call mom", text)
	assert.Equal(t, entity.DayAny, day.Kind)
	assert.Equal(t, entity.AlarmSpec{Hours: 15}, spec)

	text, day, spec, ok = splitReminder("call mom tomorrow at 9 am")
	assert.True(t, ok)
	assert.Equal(t, "call mom", text)
	assert.Equal(t, entity.DayTomorrow, day.Kind)
	assert.Equal(t, entity.AlarmSpec{Hours: 9}, spec)

	text, day, _, ok = splitReminder("meet sam at the station on friday at 6 30 pm")
	assert.True(t, ok)
	assert.Equal(t, "meet sam at the station", text)
	assert.Equal(t, time.Friday, day.Weekday)

	_, _, _, ok = splitReminder("call mom")
	assert.False(t, ok)
}
