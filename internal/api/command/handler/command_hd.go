package commandHandler

import (
	"context"
	"net/url"
	"time"

	"avril/internal/api/command"
	"avril/internal/entity"
	contextPkg "avril/pkg/context"
	"avril/pkg/handlerUtil"
	jwtPkg "avril/pkg/jwt"
	"avril/pkg/log"

	"github.com/gofiber/fiber/v2"
)

const callTimeout = 5 * time.Second

func (h *CommandHandler) ListCommands(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), callTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var commands []entity.CustomCommand
	if err := h.loop.Call(c, func() { commands = h.commandService.CustomCommands() }); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_commands")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, command.CommandListResponse{
		Commands: commands,
		Total:    len(commands),
	})
}

func (h *CommandHandler) SaveCommand(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), callTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req command.SaveCommandRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	var (
		saved entity.CustomCommand
		err   error
	)
	if callErr := h.loop.Call(c, func() {
		saved, err = h.commandService.SaveCustomCommand(c, req.Phrase, req.Response)
	}); callErr != nil {
		return errHandler.Handle(ctx, requestID, callErr, ctx.Path(), "save_command")
	}
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "save_command")
	}

	operator, _ := jwtPkg.GetOperator(ctx)
	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"key":        saved.Key,
		"operator":   operator.Username,
	}).Info("Custom command saved")

	return errHandler.HandleSuccess(ctx, fiber.StatusCreated, saved)
}

func (h *CommandHandler) DeleteCommand(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), callTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	key, err := url.PathUnescape(ctx.Params("key"))
	if err != nil || key == "" {
		return errHandler.Handle(ctx, requestID, command.ErrCommandNotFound, ctx.Path(), "delete_command")
	}

	if callErr := h.loop.Call(c, func() {
		err = h.commandService.DeleteCustomCommand(c, key)
	}); callErr != nil {
		return errHandler.Handle(ctx, requestID, callErr, ctx.Path(), "delete_command")
	}
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_command")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusNoContent, nil)
}
