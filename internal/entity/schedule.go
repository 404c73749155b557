package entity

import (
	"fmt"
	"time"
)

type AlarmSpec struct {
	Hours   int `json:"hours" validate:"min=0,max=23"`
	Minutes int `json:"minutes" validate:"min=0,max=59"`
}

// Label renders the alarm the way it is spoken, e.g. "07:30 AM".
func (a AlarmSpec) Label() string {
	return FormatTime12Hour(a.Hours, a.Minutes)
}

func (a AlarmSpec) Valid() bool {
	return a.Hours >= 0 && a.Hours <= 23 && a.Minutes >= 0 && a.Minutes <= 59
}

// AlarmTriggerWindow is how long after the exact minute an alarm may still fire.
const AlarmTriggerWindow = 2 * time.Second

// NextOccurrence returns today's occurrence of the alarm, or tomorrow's once
// today's trigger window has passed.
func (a AlarmSpec) NextOccurrence(now time.Time) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), a.Hours, a.Minutes, 0, 0, now.Location())
	if now.Sub(target) >= AlarmTriggerWindow {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

type AlarmRecord struct {
	Alarm  *AlarmSpec `json:"alarm"`
	Snooze *AlarmSpec `json:"snooze,omitempty"`
}

// Effective is the alarm the next trigger check runs against. A snooze always
// wins over the base alarm.
func (r AlarmRecord) Effective() *AlarmSpec {
	if r.Snooze != nil {
		return r.Snooze
	}
	return r.Alarm
}

type ReminderItem struct {
	ID          string `json:"id" db:"id"`
	Text        string `json:"text" db:"text"`
	Hours       int    `json:"hours" db:"hours"`
	Minutes     int    `json:"minutes" db:"minutes"`
	Timestamp   int64  `json:"timestamp" db:"timestamp"`
	Completed   bool   `json:"completed" db:"completed"`
	CompletedAt int64  `json:"completedAt,omitempty" db:"completed_at"`
	Day         string `json:"day,omitempty" db:"day"`
}

func (r ReminderItem) Due() time.Time {
	return time.UnixMilli(r.Timestamp)
}

func (r ReminderItem) Label() string {
	return FormatTime12Hour(r.Hours, r.Minutes)
}

type TimerState struct {
	RemainingSeconds int  `json:"remaining_seconds"`
	Running          bool `json:"running"`
	InitialSeconds   int  `json:"initial_seconds"`
}

func FormatTime12Hour(hours, minutes int) string {
	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	h := hours % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%02d:%02d %s", h, minutes, period)
}

// FormatClock renders a wall-clock time without zero padding, e.g. "7:05 AM".
func FormatClock(t time.Time) string {
	return t.Format("3:04 PM")
}

type DayKind uint8

const (
	DayAny      DayKind = 0
	DayToday    DayKind = 1
	DayTomorrow DayKind = 2
	DayWeekday  DayKind = 3
)

// DaySpec is the optional day part of a reminder, e.g. "on friday".
type DaySpec struct {
	Kind    DayKind
	Weekday time.Weekday
}

const DayLayout = "2006-01-02"

// Resolve returns the next future occurrence of hours:minutes on the day.
// A time that already passed today moves to tomorrow, a weekday that matches
// today but already passed moves a week ahead.
func (d DaySpec) Resolve(now time.Time, hours, minutes int) time.Time {
	at := func(offset int) time.Time {
		return time.Date(now.Year(), now.Month(), now.Day()+offset, hours, minutes, 0, 0, now.Location())
	}

	switch d.Kind {
	case DayTomorrow:
		return at(1)
	case DayWeekday:
		offset := (int(d.Weekday) - int(now.Weekday()) + 7) % 7
		target := at(offset)
		if !target.After(now) {
			target = at(offset + 7)
		}
		return target
	default:
		target := at(0)
		if !target.After(now) {
			target = at(1)
		}
		return target
	}
}

// Matches reports whether a due time falls on the day. DayAny matches
// everything.
func (d DaySpec) Matches(now, due time.Time) bool {
	due = due.In(now.Location())
	switch d.Kind {
	case DayToday:
		return sameDay(due, now)
	case DayTomorrow:
		return sameDay(due, now.AddDate(0, 0, 1))
	case DayWeekday:
		return due.Weekday() == d.Weekday
	default:
		return true
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
