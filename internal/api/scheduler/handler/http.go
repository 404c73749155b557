package schedulerHandler

import (
	schedulerService "avril/internal/api/scheduler/service"
	"avril/internal/middleware"
	"avril/pkg/eventloop"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type SchedulerHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	loop             eventloop.Loop
	schedulerService schedulerService.ISchedulerService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	loop eventloop.Loop,
	ss schedulerService.ISchedulerService,
) *SchedulerHandler {
	return &SchedulerHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		loop:             loop,
		schedulerService: ss,
	}
}

func (h *SchedulerHandler) Start(srv fiber.Router) {
	schedule := srv.Group("/schedule", h.middleware.NewTokenMiddleware)

	schedule.Get("/alarm", h.GetAlarm)
	schedule.Put("/alarm", h.SetAlarm)
	schedule.Delete("/alarm", h.CancelAlarm)
	schedule.Post("/alarm/stop", h.StopAlarm)
	schedule.Post("/alarm/snooze", h.SnoozeAlarm)

	schedule.Get("/reminders", h.GetReminders)
	schedule.Post("/reminders", h.AddReminder)
	schedule.Delete("/reminders", h.CancelAllReminders)

	schedule.Get("/timer", h.GetTimer)
	schedule.Put("/timer", h.SetTimer)
	schedule.Post("/timer/stop", h.StopTimer)
	schedule.Post("/timer/reset", h.ResetTimer)

	schedule.Get("/announce-interval", h.GetAnnounceInterval)
	schedule.Put("/announce-interval", h.SetAnnounceInterval)
}
