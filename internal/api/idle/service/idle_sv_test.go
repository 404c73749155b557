package idleService

import (
	"io"
	"testing"
	"time"

	"avril/internal/api/idle"
	"avril/internal/entity"
	"avril/pkg/eventloop"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type sleepLog struct{ events []idle.SleepEvent }

func (s *sleepLog) Emit(event string, payload interface{}) {
	if e, ok := payload.(idle.SleepEvent); ok && event == "sleep" {
		s.events = append(s.events, e)
	}
}

func setup() (*eventloop.Manual, *entity.EngineState, *sleepLog, ISupervisor) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	loop := eventloop.NewManual(time.Date(2026, 10, 19, 22, 0, 0, 0, time.UTC))
	state := entity.NewEngineState()
	events := &sleepLog{}
	return loop, state, events, New(log, loop, state, events, Config{})
}

func TestSleepsAfterTimeout(t *testing.T) {
	loop, state, events, sup := setup()
	sup.Start()

	loop.Advance(DefaultTimeout - time.Millisecond)
	assert.False(t, state.Asleep)

	loop.Advance(time.Millisecond)
	assert.True(t, sup.Asleep())
	assert.Equal(t, []idle.SleepEvent{{Asleep: true}}, events.events)
}

func TestTouchPostponesAndWakes(t *testing.T) {
	loop, state, events, sup := setup()
	sup.Start()

	loop.Advance(8 * time.Second)
	sup.Touch("pointer")
	loop.Advance(8 * time.Second)
	assert.False(t, state.Asleep)

	loop.Advance(2 * time.Second)
	assert.True(t, state.Asleep)

	sup.Touch("speech")
	assert.False(t, state.Asleep)
	assert.Equal(t, []idle.SleepEvent{{Asleep: true}, {Asleep: false}}, events.events)
}

func TestAmplitudeAboveThresholdCountsAsActivity(t *testing.T) {
	loop, state, _, sup := setup()
	sup.Start()

	loop.Advance(9 * time.Second)
	sup.Amplitude(0.05)
	loop.Advance(time.Second)
	assert.True(t, state.Asleep, "quiet room does not keep the screen awake")

	for i := 0; i < 10; i++ {
		sup.Amplitude(0.9)
	}
	assert.False(t, state.Asleep)
}

func TestStopCancelsTimer(t *testing.T) {
	loop, state, _, sup := setup()
	sup.Start()
	sup.Stop()

	loop.Advance(time.Minute)
	assert.False(t, state.Asleep)
}
