package conversationService

import (
	"time"

	commandService "avril/internal/api/command/service"
	"avril/internal/api/speech"
	"avril/internal/entity"
	"avril/pkg/eventloop"

	"github.com/sirupsen/logrus"
)

const (
	FollowUpWindow    = 30 * time.Second
	DuplicateWindow   = 1500 * time.Millisecond
	SubtitleThreshold = 50

	wakePrompt = "What is your command?"
)

// Speaker is the speech output gate as seen by the conversation.
type Speaker interface {
	Speak(text string)
	Speaking() bool
}

// Activity receives the signal that keeps the assistant awake.
type Activity interface {
	Touch(kind string)
}

type EventSink interface {
	Emit(event string, payload interface{})
}

// Recognition is the part of the recognition manager the conversation
// subscribes to.
type Recognition interface {
	OnFinalTranscript(fn func(transcript string))
	OnStateChange(fn func(from, to entity.RecognitionState))
}

// IConversationService decides what each transcript means for the session:
// drop it, treat it as a wake phrase, answer a follow-up or route it as a
// command.
type IConversationService interface {
	// Submit hands a transcript to the loop. Safe from any goroutine.
	Submit(raw string)
	// HandleTranscript must be called on the loop.
	HandleTranscript(raw string)
	Deliver(heard string, reply commandService.Reply)
	ResetWake()
	State() entity.ConversationState
}

type conversationService struct {
	log      *logrus.Entry
	loop     eventloop.Loop
	state    *entity.EngineState
	router   commandService.ICommandService
	speaker  Speaker
	chimer   speech.Chimer
	activity Activity
	events   EventSink

	followUpTimer eventloop.Timer
}

type noopActivity struct{}

func (noopActivity) Touch(string) {}

type noopSink struct{}

func (noopSink) Emit(string, interface{}) {}

func New(
	log *logrus.Logger,
	loop eventloop.Loop,
	state *entity.EngineState,
	router commandService.ICommandService,
	speaker Speaker,
	chimer speech.Chimer,
	activity Activity,
	events EventSink,
	recognition Recognition,
) IConversationService {
	if activity == nil {
		activity = noopActivity{}
	}
	if events == nil {
		events = noopSink{}
	}

	s := &conversationService{
		log:      log.WithField("component", "conversation"),
		loop:     loop,
		state:    state,
		router:   router,
		speaker:  speaker,
		chimer:   chimer,
		activity: activity,
		events:   events,
	}

	if recognition != nil {
		recognition.OnFinalTranscript(s.HandleTranscript)
		recognition.OnStateChange(s.onRecognitionState)
	}

	return s
}

func (s *conversationService) Submit(raw string) {
	s.loop.Post(func() {
		s.HandleTranscript(raw)
	})
}

func (s *conversationService) State() entity.ConversationState {
	return s.state.Conversation()
}

// A closed or refused microphone ends the session; nothing can answer a
// prompt without it.
func (s *conversationService) onRecognitionState(_, to entity.RecognitionState) {
	if to != entity.RecognitionIdle && to != entity.RecognitionFallback {
		return
	}
	s.clearFollowUp()
	s.ResetWake()
}
