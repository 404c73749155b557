package conversationHandler

import (
	"context"
	"strings"
	"time"

	"avril/internal/api/conversation"
	contextPkg "avril/pkg/context"
	"avril/pkg/handlerUtil"
	"avril/pkg/log"

	"github.com/gofiber/fiber/v2"
)

const (
	callTimeout     = 5 * time.Second
	transcribeLimit = 30 * time.Second
	maxAudioBytes   = 25 * 1024 * 1024
)

func (h *ConversationHandler) GetState(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), callTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var resp conversation.StateResponse
	err := h.loop.Call(c, func() {
		resp = conversation.StateResponse{
			Conversation: h.conversation.State().String(),
			Session:      h.state.Session,
			FollowUp:     h.state.FollowUp,
			Recognition:  h.state.Recognition.State().String(),
			Speaking:     h.state.Speech.Speaking,
			Asleep:       h.state.Asleep,
			Online:       h.state.Online,
		}
	})
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_state")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
}

func (h *ConversationHandler) PostTranscript(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), callTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req conversation.TranscriptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"text":       req.Text,
	}).Debug("Typed command received")

	if err := h.loop.Call(c, func() { h.conversation.HandleTranscript(req.Text) }); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "post_transcript")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusAccepted, conversation.TranscriptResponse{Accepted: true})
}

func (h *ConversationHandler) PostMic(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), callTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req conversation.MicRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return errHandler.Handle(ctx, requestID, conversation.ErrInvalidMicAction, ctx.Path(), "post_mic")
	}

	var resp conversation.MicResponse
	err := h.loop.Call(c, func() {
		h.mic.Apply(req.Action)
		resp = conversation.MicResponse{
			Recognition: h.state.Recognition.State().String(),
			Muted:       h.mic.Muted(),
		}
	})
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "post_mic")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
}

// PostAudio transcribes an uploaded clip and feeds the text to the
// conversation as if it had been heard.
func (h *ConversationHandler) PostAudio(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), transcribeLimit)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	if h.transcriber == nil {
		return errHandler.Handle(ctx, requestID, conversation.ErrTranscriberUnavailable, ctx.Path(), "post_audio")
	}

	header, err := ctx.FormFile("audio")
	if err != nil {
		return errHandler.Handle(ctx, requestID, conversation.ErrInvalidAudio, ctx.Path(), "post_audio")
	}
	if header.Size > maxAudioBytes {
		return errHandler.Handle(ctx, requestID, conversation.ErrAudioTooLarge, ctx.Path(), "post_audio")
	}

	file, err := header.Open()
	if err != nil {
		return errHandler.Handle(ctx, requestID, conversation.ErrInvalidAudio, ctx.Path(), "post_audio")
	}
	defer file.Close()

	text, err := h.transcriber.Transcribe(c, header.Filename, file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "post_audio")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return errHandler.Handle(ctx, requestID, conversation.ErrNothingHeard, ctx.Path(), "post_audio")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"file":       header.Filename,
		"text":       text,
	}).Info("Audio clip transcribed")

	h.conversation.Submit(text)

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusAccepted, conversation.AudioResponse{Text: text})
	}
}
