package speechService

import (
	"time"

	"avril/internal/api/speech"
	"avril/internal/entity"
	"avril/pkg/eventloop"

	"github.com/sirupsen/logrus"
)

const (
	EndRestartDelay   = 700 * time.Millisecond
	ErrorRestartDelay = 1000 * time.Millisecond
	ChimeCooldown     = 500 * time.Millisecond
	EchoSettleDelay   = 1200 * time.Millisecond

	fallbackStatus = "Tap Mic to enable voice commands"
)

// IRecognitionManager owns the recognizer lifecycle. Every method must be
// called on the loop.
type IRecognitionManager interface {
	Start(playAck bool)
	Stop()
	RequestCapture()
	CaptureGranted()
	CaptureDenied(reason string)
	ReleaseCapture()
	// ToggleMute flips between streaming and muted and reports whether the
	// microphone ends up muted.
	ToggleMute() bool
	Muted() bool
	// PauseForSpeech reports whether recognition is now paused for output,
	// either because it was just stopped or because a pause was already
	// pending.
	PauseForSpeech() bool
	ResumeAfterSpeech()

	OnFinalTranscript(fn func(transcript string))
	OnError(fn func(code string))
	OnStateChange(fn func(from, to entity.RecognitionState))
}

// ISpeechGate serialises spoken output and keeps the microphone closed while
// the assistant talks.
type ISpeechGate interface {
	Speak(text string)
	Cancel()
	Speaking() bool
}

type GateConfig struct {
	Lang       string
	Voice      string
	Pitch      float64
	EchoSettle time.Duration
}

type recognitionManager struct {
	log        *logrus.Entry
	loop       eventloop.Loop
	state      *entity.EngineState
	recognizer speech.Recognizer
	chimer     speech.Chimer
	status     speech.StatusSink

	restartTimer      eventloop.Timer
	lastChime         time.Time
	stopRequested     bool
	errored           bool
	fallbackAnnounced bool

	transcriptHandlers []func(string)
	errorHandlers      []func(string)
	stateHandlers      []func(from, to entity.RecognitionState)
}

func NewRecognitionManager(
	log *logrus.Logger,
	loop eventloop.Loop,
	state *entity.EngineState,
	recognizer speech.Recognizer,
	chimer speech.Chimer,
	status speech.StatusSink,
) IRecognitionManager {
	m := &recognitionManager{
		log:        log.WithField("component", "recognition"),
		loop:       loop,
		state:      state,
		recognizer: recognizer,
		chimer:     chimer,
		status:     status,
	}

	recognizer.SetHandlers(speech.RecognizerHandlers{
		OnResult: func(transcript string) {
			loop.Post(func() { m.onResult(transcript) })
		},
		OnError: func(code string) {
			loop.Post(func() { m.onError(code) })
		},
		OnEnd: func() {
			loop.Post(m.onEnd)
		},
	})

	return m
}

type speechGate struct {
	log         *logrus.Entry
	loop        eventloop.Loop
	state       *entity.EngineState
	synth       speech.Synthesizer
	recognition IRecognitionManager
	cfg         GateConfig

	nextID      uint64
	resumeTimer eventloop.Timer
}

func NewSpeechGate(
	log *logrus.Logger,
	loop eventloop.Loop,
	state *entity.EngineState,
	synth speech.Synthesizer,
	recognition IRecognitionManager,
	cfg GateConfig,
) ISpeechGate {
	if cfg.Lang == "" {
		cfg.Lang = "en-GB"
	}
	if cfg.Pitch == 0 {
		cfg.Pitch = 0.9
	}
	if cfg.EchoSettle <= 0 {
		cfg.EchoSettle = EchoSettleDelay
	}

	g := &speechGate{
		log:         log.WithField("component", "speech"),
		loop:        loop,
		state:       state,
		synth:       synth,
		recognition: recognition,
		cfg:         cfg,
	}

	synth.SetOnFinished(func(id uint64, err error) {
		loop.Post(func() { g.finished(id, err) })
	})

	return g
}
