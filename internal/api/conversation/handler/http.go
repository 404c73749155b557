package conversationHandler

import (
	"context"
	"io"

	consoleService "avril/internal/api/console/service"
	conversationService "avril/internal/api/conversation/service"
	"avril/internal/entity"
	"avril/internal/middleware"
	"avril/pkg/eventloop"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

// Microphone applies start, stop, mute and unmute on whichever recognizer is
// wired. Methods are called on the loop.
type Microphone interface {
	Apply(action string)
	Muted() bool
}

type Transcriber interface {
	Transcribe(ctx context.Context, name string, clip io.Reader) (string, error)
}

type ConversationHandler struct {
	log          *logrus.Logger
	validator    *validator.Validate
	middleware   middleware.Middleware
	loop         eventloop.Loop
	state        *entity.EngineState
	conversation conversationService.IConversationService
	mic          Microphone
	hub          consoleService.IHub
	transcriber  Transcriber
}

// New builds the assistant handler. hub and transcriber may be nil, which
// leaves the console socket or the audio upload unregistered or unavailable.
func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	loop eventloop.Loop,
	state *entity.EngineState,
	cs conversationService.IConversationService,
	mic Microphone,
	hub consoleService.IHub,
	transcriber Transcriber,
) *ConversationHandler {
	return &ConversationHandler{
		log:          log,
		validator:    validate,
		middleware:   middleware,
		loop:         loop,
		state:        state,
		conversation: cs,
		mic:          mic,
		hub:          hub,
		transcriber:  transcriber,
	}
}

func (h *ConversationHandler) Start(srv fiber.Router) {
	assistant := srv.Group("/assistant")

	assistant.Get("/state", h.GetState)
	assistant.Post("/transcript", h.middleware.NewRateLimiter, h.PostTranscript)
	assistant.Post("/mic", h.middleware.NewRateLimiter, h.PostMic)
	assistant.Post("/audio", h.middleware.NewRateLimiter, h.PostAudio)

	if h.hub != nil {
		assistant.Get("/ws", h.upgrade, websocket.New(func(conn *websocket.Conn) {
			h.hub.Serve(conn)
		}))
	}
}

func (h *ConversationHandler) upgrade(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}
