package scheduler

import "avril/internal/entity"

type AlarmResponse struct {
	Alarm   *entity.AlarmSpec `json:"alarm"`
	Snooze  *entity.AlarmSpec `json:"snooze,omitempty"`
	Label   string            `json:"label,omitempty"`
	Ringing bool              `json:"ringing"`
}

type SetAlarmRequest struct {
	Hours   int `json:"hours" validate:"min=0,max=23"`
	Minutes int `json:"minutes" validate:"min=0,max=59"`
}

type ReminderListResponse struct {
	Reminders []entity.ReminderItem `json:"reminders"`
	Total     int                   `json:"total"`
}

type AddReminderRequest struct {
	Text    string `json:"text" validate:"required,max=200"`
	Hours   int    `json:"hours" validate:"min=0,max=23"`
	Minutes int    `json:"minutes" validate:"min=0,max=59"`
	// Day is optional: today, tomorrow or a weekday name.
	Day string `json:"day" validate:"omitempty,oneof=today tonight tomorrow monday tuesday wednesday thursday friday saturday sunday"`
}

type CancelRemindersResponse struct {
	Cancelled int `json:"cancelled"`
}

type SetTimerRequest struct {
	Seconds int `json:"seconds" validate:"min=1,max=86400"`
}

type TimerResponse struct {
	entity.TimerState
}

type AnnounceIntervalRequest struct {
	Minutes *int `json:"minutes" validate:"required,oneof=0 1 5 10 15 30 60"`
}

type AnnounceIntervalResponse struct {
	Minutes int `json:"minutes"`
}

// AlarmEvent is pushed to the console when the alarm starts or stops ringing.
type AlarmEvent struct {
	Ringing bool   `json:"ringing"`
	Label   string `json:"label,omitempty"`
}

type TimerEvent struct {
	entity.TimerState
	Finished bool `json:"finished"`
}
