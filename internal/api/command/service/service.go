package commandService

import (
	"context"
	"math/rand"
	"time"

	commandRepository "avril/internal/api/command/repository"
	schedulerService "avril/internal/api/scheduler/service"
	weatherService "avril/internal/api/weather/service"
	"avril/internal/entity"
	"avril/pkg/eventloop"

	"github.com/sirupsen/logrus"
)

// FollowUp asks the conversation engine to keep listening for a related
// utterance without a new wake phrase.
type FollowUp struct {
	Type     entity.CommandType
	Location string
	Snapshot *entity.WeatherSnapshot
	Pending  entity.PendingQuestion
}

type Reply struct {
	Intent string
	Text   string
	// Silent replies say nothing and leave the wake state untouched.
	Silent bool
	// KeepSession leaves the session open so the next utterance is routed
	// without a wake phrase.
	KeepSession bool
	FollowUp    *FollowUp
}

type MicControl interface {
	ToggleMute() bool
	Muted() bool
}

type EventSink interface {
	Emit(event string, payload interface{})
}

// ICommandService routes recognised utterances to intents. Every method
// must be called on the loop.
type ICommandService interface {
	Load(ctx context.Context) error

	// Route answers through done, possibly later on the loop when the intent
	// needs the network.
	Route(raw string, done func(Reply))
	// AlarmControl and MicControl match only the intercepted control
	// commands, reporting false when raw is something else.
	AlarmControl(raw string) (Reply, bool)
	MicControl(raw string) (Reply, bool)
	IsWakePhrase(raw string) bool
	// IsCommand reports whether raw names a built-in command, so a short
	// "stop the timer" is not mistaken for a yes/no answer.
	IsCommand(raw string) bool

	// Weather and ListReminders serve follow-up answers directly.
	Weather(location string, done func(Reply))
	ListReminders() Reply

	CustomCommands() []entity.CustomCommand
	SaveCustomCommand(ctx context.Context, phrase, response string) (entity.CustomCommand, error)
	DeleteCustomCommand(ctx context.Context, key string) error
}

type Config struct {
	AssistantName   string
	DefaultLocation string
	SeedPath        string
	// Pick chooses a joke index; rand.Intn when nil.
	Pick func(n int) int
}

type commandService struct {
	log       *logrus.Entry
	loop      eventloop.Loop
	repo      commandRepository.IRepository
	scheduler schedulerService.ISchedulerService
	weather   weatherService.IWeatherService
	mic       MicControl
	events    EventSink
	cfg       Config

	custom   []entity.CustomCommand
	jokes    []string
	intents  []intent
	commands []intent
}

type noopSink struct{}

func (noopSink) Emit(string, interface{}) {}

func New(
	log *logrus.Logger,
	loop eventloop.Loop,
	repo commandRepository.IRepository,
	scheduler schedulerService.ISchedulerService,
	weather weatherService.IWeatherService,
	mic MicControl,
	events EventSink,
	cfg Config,
) ICommandService {
	if events == nil {
		events = noopSink{}
	}
	if cfg.AssistantName == "" {
		cfg.AssistantName = "Avril"
	}
	if cfg.DefaultLocation == "" {
		cfg.DefaultLocation = "London"
	}
	if cfg.Pick == nil {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		cfg.Pick = rng.Intn
	}

	s := &commandService{
		log:       log.WithField("component", "router"),
		loop:      loop,
		repo:      repo,
		scheduler: scheduler,
		weather:   weather,
		mic:       mic,
		events:    events,
		cfg:       cfg,
		jokes:     defaultJokes,
	}
	s.intents = s.buildIntents()
	s.commands = s.commandIntents()
	return s
}
