package idleService

import (
	"time"

	"avril/internal/api/idle"
	"avril/internal/entity"
	"avril/pkg/eventloop"
	"avril/pkg/metrics"

	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultThreshold = 0.08

	// Amplitude readings are smoothed before they count as activity.
	smoothing = 0.15
)

type EventSink interface {
	Emit(event string, payload interface{})
}

// ISupervisor turns the activity signal into the sleep screen. It shares no
// timers with the conversation.
type ISupervisor interface {
	Start()
	Stop()
	Touch(kind string)
	// Amplitude feeds one microphone level reading in [0, 1].
	Amplitude(level float64)
	Asleep() bool
}

type Config struct {
	Timeout     time.Duration
	Threshold   float64
	Sensitivity float64
}

type supervisor struct {
	log    *logrus.Entry
	loop   eventloop.Loop
	state  *entity.EngineState
	events EventSink
	cfg    Config

	timer        eventloop.Timer
	lastActivity time.Time
	level        float64
}

func New(log *logrus.Logger, loop eventloop.Loop, state *entity.EngineState, events EventSink, cfg Config) ISupervisor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Sensitivity <= 0 {
		cfg.Sensitivity = 1
	}

	return &supervisor{
		log:    log.WithField("component", "idle"),
		loop:   loop,
		state:  state,
		events: events,
		cfg:    cfg,
	}
}

func (s *supervisor) Start() {
	s.Touch("start")
}

func (s *supervisor) Stop() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *supervisor) Touch(kind string) {
	s.lastActivity = s.loop.Now()
	s.setAsleep(false, kind)

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.loop.AfterFunc(s.cfg.Timeout, s.expire)
}

func (s *supervisor) Amplitude(level float64) {
	s.level += (level*s.cfg.Sensitivity - s.level) * smoothing
	if s.level > s.cfg.Threshold {
		s.Touch("microphone")
	}
}

func (s *supervisor) Asleep() bool {
	return s.state.Asleep
}

func (s *supervisor) expire() {
	s.timer = nil
	if s.loop.Now().Sub(s.lastActivity) < s.cfg.Timeout {
		return
	}
	s.setAsleep(true, "timeout")
}

func (s *supervisor) setAsleep(asleep bool, cause string) {
	if s.state.Asleep == asleep {
		return
	}
	s.state.Asleep = asleep

	if asleep {
		metrics.Asleep.Set(1)
	} else {
		metrics.Asleep.Set(0)
	}

	s.log.WithFields(logrus.Fields{
		"asleep": asleep,
		"cause":  cause,
	}).Info("Sleep mode changed")

	if s.events != nil {
		s.events.Emit("sleep", idle.SleepEvent{Asleep: asleep})
	}
}
