package config

import (
	"context"
	"errors"
	"fmt"

	commandRepository "avril/internal/api/command/repository"
	commandService "avril/internal/api/command/service"
	"avril/internal/api/console"
	consoleService "avril/internal/api/console/service"
	conversationService "avril/internal/api/conversation/service"
	"avril/internal/api/idle"
	idleService "avril/internal/api/idle/service"
	schedulerRepository "avril/internal/api/scheduler/repository"
	schedulerService "avril/internal/api/scheduler/service"
	"avril/internal/api/speech"
	speechService "avril/internal/api/speech/service"
	weatherService "avril/internal/api/weather/service"
	"avril/internal/entity"
	"avril/pkg/audio"
	"avril/pkg/eventloop"
	"avril/pkg/filewatch"
	"avril/pkg/notify"
	"avril/pkg/storage"
	websocketPkg "avril/pkg/websocket"
	"avril/pkg/wttr"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// Engine is the assembled assistant. Everything except Loop and Hub must be
// used from inside the loop.
type Engine struct {
	Loop         *eventloop.EventLoop
	State        *entity.EngineState
	Hub          consoleService.IHub
	Recognition  speechService.IRecognitionManager
	Gate         speechService.ISpeechGate
	Weather      weatherService.IWeatherService
	Scheduler    schedulerService.ISchedulerService
	Commands     commandService.ICommandService
	Conversation conversationService.IConversationService
	Idle         idleService.ISupervisor
	Mic          *Microphone
	Transcriber  *audio.Transcriber

	log      *logrus.Logger
	seedPath string
}

func NewEngine(log *logrus.Logger, cfg AssistantConfig, store storage.IStorage, notifier notify.INotifier) (*Engine, error) {
	loop := eventloop.New(log)
	state := entity.NewEngineState()
	hub := consoleService.New(log, loop, consoleService.Config{Lang: cfg.Lang})

	var recognizer speech.Recognizer = hub
	if cfg.Headless() {
		if cfg.StreamURL == "" {
			return nil, errors.New("RECOGNIZER=stream needs STT_STREAM_URL")
		}
		recognizer = websocketPkg.NewStreamRecognizer(log, websocketPkg.StreamConfig{
			URL:   cfg.StreamURL,
			Token: cfg.StreamToken,
		}, websocketPkg.CommandSource{Args: cfg.CaptureCommand})
	}

	var (
		synthesizer speech.Synthesizer = hub
		transcriber *audio.Transcriber
	)
	if cfg.OpenAIKey != "" {
		client := audio.NewOpenAIClient(cfg.OpenAIKey)
		transcriber = audio.NewTranscriber(client, languageCode(cfg.Lang))
		if cfg.Synthesizer == SynthesizerOpenAI {
			synthesizer = audio.NewSynthesizer(log, client, audio.CommandPlayer{Args: cfg.PlayerCommand}, audio.SynthesizerConfig{
				Voice: openai.SpeechVoice(cfg.TTSVoice),
			})
		}
	} else if cfg.Synthesizer == SynthesizerOpenAI {
		return nil, errors.New("SYNTHESIZER=openai needs OPENAI_API_KEY")
	}

	recognition := speechService.NewRecognitionManager(log, loop, state, recognizer, hub, hub)
	gate := speechService.NewSpeechGate(log, loop, state, synthesizer, recognition, speechService.GateConfig{
		Lang:  cfg.Lang,
		Voice: cfg.Voice,
	})

	weather := weatherService.New(log, loop, state, wttr.New(cfg.WeatherURL), weatherService.Config{
		LookupTimeout: cfg.WeatherTimeout,
	})

	scheduler := schedulerService.New(log, loop, schedulerRepository.New(store, log), gate, hub, weather, notifier,
		schedulerService.Config{DefaultLocation: cfg.DefaultLocation})

	commands := commandService.New(log, loop, commandRepository.New(store, log), scheduler, weather, recognition, hub,
		commandService.Config{
			AssistantName:   cfg.Name,
			DefaultLocation: cfg.DefaultLocation,
			SeedPath:        cfg.CommandSeedPath,
		})

	supervisor := idleService.New(log, loop, state, hub, idleService.Config{
		Timeout:   cfg.IdleTimeout,
		Threshold: cfg.IdleThreshold,
	})

	conversation := conversationService.New(log, loop, state, commands, gate, hub, supervisor, hub, recognition)

	e := &Engine{
		Loop:         loop,
		State:        state,
		Hub:          hub,
		Recognition:  recognition,
		Gate:         gate,
		Weather:      weather,
		Scheduler:    scheduler,
		Commands:     commands,
		Conversation: conversation,
		Idle:         supervisor,
		Mic:          &Microphone{recognition: recognition, hub: hub, headless: cfg.Headless()},
		Transcriber:  transcriber,
		log:          log,
		seedPath:     cfg.CommandSeedPath,
	}
	hub.SetInbound(&consoleInbound{engine: e})

	return e, nil
}

// Boot restores persisted state and starts the schedulers. It must run after
// the loop is running.
func (e *Engine) Boot(ctx context.Context) error {
	var errs []error
	err := e.Loop.Call(ctx, func() {
		if err := e.Scheduler.Load(ctx); err != nil {
			errs = append(errs, fmt.Errorf("load schedule: %w", err))
		}
		if err := e.Commands.Load(ctx); err != nil {
			errs = append(errs, fmt.Errorf("load commands: %w", err))
		}

		e.Scheduler.Start()
		e.Idle.Start()
		if e.Mic.headless {
			e.Mic.Open()
		}
	})
	if err != nil {
		return err
	}

	// A missing seed or unreadable store falls back to defaults.
	for _, err := range errs {
		e.log.WithField("error", err.Error()).Warn("Engine started with defaults")
	}
	return nil
}

// WatchSeed reloads custom commands and jokes whenever the seed file is
// edited. It returns when ctx is cancelled; a seed directory that does not
// exist is logged and skipped.
func (e *Engine) WatchSeed(ctx context.Context) error {
	if e.seedPath == "" {
		return nil
	}

	err := filewatch.Watch(ctx, e.log, e.seedPath, filewatch.DefaultSettle, func() {
		e.Loop.Post(func() {
			if err := e.Commands.Load(ctx); err != nil {
				e.log.WithField("error", err.Error()).Warn("Command seed reload failed")
			}
		})
	})
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"path":  e.seedPath,
			"error": err.Error(),
		}).Warn("Command seed is not watched")
	}
	return nil
}

// Shutdown stops timers and the recognizer. The loop itself stops with its
// context.
func (e *Engine) Shutdown(ctx context.Context) {
	_ = e.Loop.Call(ctx, func() {
		e.Scheduler.Stop()
		e.Idle.Stop()
		e.Gate.Cancel()
		e.Recognition.Stop()
	})
}

// Microphone opens capture on the console or, when headless, on the server's
// own recognizer.
type Microphone struct {
	recognition speechService.IRecognitionManager
	hub         consoleService.IHub
	headless    bool
}

func (m *Microphone) Open() {
	m.recognition.RequestCapture()
	if m.headless {
		m.recognition.CaptureGranted()
		return
	}
	m.hub.Emit(console.OutCaptureRequest, nil)
}

func (m *Microphone) Close() {
	m.recognition.ReleaseCapture()
}

func (m *Microphone) ToggleMute() bool {
	return m.recognition.ToggleMute()
}

func (m *Microphone) Muted() bool {
	return m.recognition.Muted()
}

// Apply runs one of the start, stop, mute or unmute actions.
func (m *Microphone) Apply(action string) {
	switch action {
	case "start":
		m.Open()
	case "stop":
		m.Close()
	case "mute":
		if !m.Muted() {
			m.ToggleMute()
		}
	case "unmute":
		if m.Muted() {
			m.ToggleMute()
		}
	}
}

type consoleInbound struct {
	engine *Engine
}

func (c *consoleInbound) ClientJoined() {
	c.engine.Idle.Touch("console")
	if !c.engine.Mic.headless {
		c.engine.Mic.Open()
	}
}

func (c *consoleInbound) ClientLeft() {
	if !c.engine.Mic.headless {
		c.engine.Mic.Close()
	}
}

func (c *consoleInbound) Capture(granted bool, reason string) {
	if granted {
		c.engine.Recognition.CaptureGranted()
		return
	}
	c.engine.Recognition.CaptureDenied(reason)
}

func (c *consoleInbound) Activity(ev idle.ActivityEvent) {
	if ev.Amplitude > 0 {
		c.engine.Idle.Amplitude(ev.Amplitude)
		return
	}
	c.engine.Idle.Touch(ev.Kind)
}

func (c *consoleInbound) Mic(action string) {
	c.engine.Mic.Apply(action)
}

func (c *consoleInbound) Command(text string) {
	c.engine.Idle.Touch("typed")
	c.engine.Conversation.HandleTranscript(text)
}

func (c *consoleInbound) Connectivity(online bool) {
	if c.engine.State.Online == online {
		return
	}
	c.engine.State.Online = online
	c.engine.log.WithField("online", online).Info("Connectivity changed")
}

// languageCode turns a locale such as en-GB into the ISO-639-1 code the
// transcription API expects.
func languageCode(lang string) string {
	if len(lang) >= 2 {
		return lang[:2]
	}
	return lang
}
