package commandHandler

import (
	commandService "avril/internal/api/command/service"
	"avril/internal/middleware"
	"avril/pkg/eventloop"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type CommandHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	loop           eventloop.Loop
	commandService commandService.ICommandService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	loop eventloop.Loop,
	cs commandService.ICommandService,
) *CommandHandler {
	return &CommandHandler{
		log:            log,
		validator:      validate,
		middleware:     middleware,
		loop:           loop,
		commandService: cs,
	}
}

func (h *CommandHandler) Start(srv fiber.Router) {
	commands := srv.Group("/commands", h.middleware.NewTokenMiddleware)

	commands.Get("", h.ListCommands)
	commands.Post("", h.SaveCommand)
	commands.Delete("/:key", h.DeleteCommand)
}
