package schedulerHandler

import (
	"context"
	"strings"
	"time"

	commandService "avril/internal/api/command/service"
	"avril/internal/api/scheduler"
	"avril/internal/entity"
	contextPkg "avril/pkg/context"
	"avril/pkg/handlerUtil"
	jwtPkg "avril/pkg/jwt"
	"avril/pkg/log"

	"github.com/gofiber/fiber/v2"
)

const callTimeout = 5 * time.Second

// call runs fn on the loop and writes either its error or the success body.
func (h *SchedulerHandler) call(ctx *fiber.Ctx, operation string, status int, fn func() (interface{}, error)) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), callTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var (
		data interface{}
		err  error
	)
	if callErr := h.loop.Call(c, func() { data, err = fn() }); callErr != nil {
		return errHandler.Handle(ctx, requestID, callErr, ctx.Path(), operation)
	}
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), operation)
	}

	if ctx.Method() != fiber.MethodGet {
		operator, _ := jwtPkg.GetOperator(ctx)
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"operation":  operation,
			"operator":   operator.Username,
		}).Info("Schedule changed")
	}

	return errHandler.HandleSuccess(ctx, status, data)
}

func (h *SchedulerHandler) alarmResponse() scheduler.AlarmResponse {
	record := h.schedulerService.Alarm()
	resp := scheduler.AlarmResponse{
		Alarm:   record.Alarm,
		Snooze:  record.Snooze,
		Ringing: h.schedulerService.AlarmRinging(),
	}
	if effective := record.Effective(); effective != nil {
		resp.Label = effective.Label()
	}
	return resp
}

func (h *SchedulerHandler) GetAlarm(ctx *fiber.Ctx) error {
	return h.call(ctx, "get_alarm", fiber.StatusOK, func() (interface{}, error) {
		return h.alarmResponse(), nil
	})
}

func (h *SchedulerHandler) SetAlarm(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req scheduler.SetAlarmRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	return h.call(ctx, "set_alarm", fiber.StatusOK, func() (interface{}, error) {
		if err := h.schedulerService.SetAlarm(entity.AlarmSpec{Hours: req.Hours, Minutes: req.Minutes}); err != nil {
			return nil, err
		}
		return h.alarmResponse(), nil
	})
}

func (h *SchedulerHandler) CancelAlarm(ctx *fiber.Ctx) error {
	return h.call(ctx, "cancel_alarm", fiber.StatusOK, func() (interface{}, error) {
		h.schedulerService.CancelAlarm()
		return h.alarmResponse(), nil
	})
}

func (h *SchedulerHandler) StopAlarm(ctx *fiber.Ctx) error {
	return h.call(ctx, "stop_alarm", fiber.StatusOK, func() (interface{}, error) {
		h.schedulerService.StopAlarm()
		return h.alarmResponse(), nil
	})
}

func (h *SchedulerHandler) SnoozeAlarm(ctx *fiber.Ctx) error {
	return h.call(ctx, "snooze_alarm", fiber.StatusOK, func() (interface{}, error) {
		h.schedulerService.SnoozeAlarm()
		return h.alarmResponse(), nil
	})
}

func (h *SchedulerHandler) GetReminders(ctx *fiber.Ctx) error {
	return h.call(ctx, "get_reminders", fiber.StatusOK, func() (interface{}, error) {
		items := h.schedulerService.Reminders()
		return scheduler.ReminderListResponse{Reminders: items, Total: len(items)}, nil
	})
}

func (h *SchedulerHandler) AddReminder(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req scheduler.AddReminderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	req.Day = strings.ToLower(strings.TrimSpace(req.Day))
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	day, _ := commandService.ParseDay(req.Day)

	return h.call(ctx, "add_reminder", fiber.StatusCreated, func() (interface{}, error) {
		return h.schedulerService.AddReminder(req.Text, req.Hours, req.Minutes, day)
	})
}

func (h *SchedulerHandler) CancelAllReminders(ctx *fiber.Ctx) error {
	return h.call(ctx, "cancel_reminders", fiber.StatusOK, func() (interface{}, error) {
		return scheduler.CancelRemindersResponse{Cancelled: h.schedulerService.CancelAllReminders()}, nil
	})
}

func (h *SchedulerHandler) GetTimer(ctx *fiber.Ctx) error {
	return h.call(ctx, "get_timer", fiber.StatusOK, func() (interface{}, error) {
		return scheduler.TimerResponse{TimerState: h.schedulerService.Timer()}, nil
	})
}

func (h *SchedulerHandler) SetTimer(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req scheduler.SetTimerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	return h.call(ctx, "set_timer", fiber.StatusOK, func() (interface{}, error) {
		if err := h.schedulerService.SetTimer(req.Seconds); err != nil {
			return nil, err
		}
		return scheduler.TimerResponse{TimerState: h.schedulerService.Timer()}, nil
	})
}

func (h *SchedulerHandler) StopTimer(ctx *fiber.Ctx) error {
	return h.call(ctx, "stop_timer", fiber.StatusOK, func() (interface{}, error) {
		h.schedulerService.StopTimer()
		return scheduler.TimerResponse{TimerState: h.schedulerService.Timer()}, nil
	})
}

func (h *SchedulerHandler) ResetTimer(ctx *fiber.Ctx) error {
	return h.call(ctx, "reset_timer", fiber.StatusOK, func() (interface{}, error) {
		h.schedulerService.ResetTimer()
		return scheduler.TimerResponse{TimerState: h.schedulerService.Timer()}, nil
	})
}

func (h *SchedulerHandler) GetAnnounceInterval(ctx *fiber.Ctx) error {
	return h.call(ctx, "get_announce_interval", fiber.StatusOK, func() (interface{}, error) {
		return scheduler.AnnounceIntervalResponse{Minutes: h.schedulerService.AnnounceInterval()}, nil
	})
}

func (h *SchedulerHandler) SetAnnounceInterval(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req scheduler.AnnounceIntervalRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.Handle(ctx, requestID, scheduler.ErrInvalidInterval, ctx.Path(), "set_announce_interval")
	}

	return h.call(ctx, "set_announce_interval", fiber.StatusOK, func() (interface{}, error) {
		if err := h.schedulerService.SetAnnounceInterval(*req.Minutes); err != nil {
			return nil, err
		}
		return scheduler.AnnounceIntervalResponse{Minutes: h.schedulerService.AnnounceInterval()}, nil
	})
}
