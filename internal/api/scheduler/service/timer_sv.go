package schedulerService

import (
	"avril/internal/api/scheduler"
	"avril/internal/entity"
	"avril/pkg/metrics"
)

const timerFinished = "Timer finished."

func (s *schedulerService) Timer() entity.TimerState {
	return s.timer
}

// SetTimer replaces any existing countdown without completing it and starts
// the new one.
func (s *schedulerService) SetTimer(seconds int) error {
	if seconds <= 0 {
		return scheduler.ErrInvalidDuration
	}

	s.halt()
	s.timer = entity.TimerState{
		RemainingSeconds: seconds,
		InitialSeconds:   seconds,
	}
	s.log.WithField("seconds", seconds).Info("Timer set")
	return s.StartTimer()
}

func (s *schedulerService) StartTimer() error {
	if s.timer.RemainingSeconds <= 0 {
		return scheduler.ErrNoTimer
	}
	if s.timer.Running {
		return nil
	}

	s.timer.Running = true
	s.timerTick = s.loop.Every(TimerTick, s.tick)
	s.emitTimer(false)
	return nil
}

func (s *schedulerService) StopTimer() {
	if !s.timer.Running {
		return
	}
	s.halt()
	s.emitTimer(false)
}

func (s *schedulerService) ResetTimer() {
	s.halt()
	s.timer.RemainingSeconds = s.timer.InitialSeconds
	s.emitTimer(false)
}

func (s *schedulerService) halt() {
	s.timer.Running = false
	if s.timerTick != nil {
		s.timerTick.Stop()
		s.timerTick = nil
	}
}

func (s *schedulerService) tick() {
	if !s.timer.Running {
		return
	}

	s.timer.RemainingSeconds--
	if s.timer.RemainingSeconds > 0 {
		s.emitTimer(false)
		return
	}

	s.timer.RemainingSeconds = 0
	s.halt()
	metrics.ScheduleFired.WithLabelValues("timer").Inc()
	s.log.Info("Timer finished")
	s.emitTimer(true)
	s.speaker.Speak(timerFinished)
}

func (s *schedulerService) emitTimer(finished bool) {
	s.events.Emit("timer", scheduler.TimerEvent{TimerState: s.timer, Finished: finished})
}
