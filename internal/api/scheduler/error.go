package scheduler

import "avril/pkg/response"

var (
	ErrInvalidTime     = response.NewError(400, "invalid time")
	ErrInvalidDuration = response.NewError(400, "invalid timer duration")
	ErrInvalidInterval = response.NewError(400, "announce interval must be one of 0, 1, 5, 10, 15, 30 or 60 minutes")
	ErrEmptyReminder   = response.NewError(400, "reminder text is required")
	ErrNoTimer         = response.NewError(409, "no timer set")
	ErrPersist         = response.NewError(500, "failed to persist schedule")
)
