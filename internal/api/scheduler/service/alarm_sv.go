package schedulerService

import (
	"context"
	"fmt"
	"time"

	"avril/internal/api/scheduler"
	"avril/internal/entity"
	contextPkg "avril/pkg/context"
	"avril/pkg/metrics"

	"github.com/sirupsen/logrus"
)

func (s *schedulerService) Alarm() entity.AlarmRecord {
	return s.alarm
}

func (s *schedulerService) AlarmRinging() bool {
	return s.alarmRinging
}

func (s *schedulerService) SetAlarm(spec entity.AlarmSpec) error {
	if !spec.Valid() {
		return scheduler.ErrInvalidTime
	}

	s.alarm = entity.AlarmRecord{Alarm: &spec}
	s.preNotified = false
	s.log.WithField("alarm", spec.Label()).Info("Alarm set")

	return s.saveAlarm()
}

func (s *schedulerService) CancelAlarm() {
	s.silence()
	s.alarm = entity.AlarmRecord{}
	s.preNotified = false
	s.log.Info("Alarm cancelled")

	_ = s.saveAlarm()
}

func (s *schedulerService) StopAlarm() bool {
	wasRinging := s.alarmRinging
	s.silence()

	if s.alarm.Snooze != nil {
		s.alarm.Snooze = nil
		_ = s.saveAlarm()
	}
	return wasRinging
}

func (s *schedulerService) SnoozeAlarm() entity.AlarmSpec {
	s.silence()

	at := s.loop.Now().Add(SnoozeDuration)
	snooze := entity.AlarmSpec{Hours: at.Hour(), Minutes: at.Minute()}
	s.alarm.Snooze = &snooze
	s.preNotified = false
	s.log.WithField("snooze", snooze.Label()).Info("Alarm snoozed")

	_ = s.saveAlarm()
	return snooze
}

func (s *schedulerService) silence() {
	if !s.alarmRinging {
		return
	}
	s.alarmRinging = false
	s.events.Emit("alarm", scheduler.AlarmEvent{Ringing: false})
}

func (s *schedulerService) saveAlarm() error {
	ctx, cancel := s.storeCtx()
	defer cancel()

	if err := s.repo.SaveAlarm(ctx, s.alarm); err != nil {
		return scheduler.ErrPersist
	}
	return nil
}

func (s *schedulerService) checkAlarm() {
	spec := s.alarm.Effective()
	if spec == nil {
		return
	}

	now := s.loop.Now()
	target := spec.NextOccurrence(now)
	until := target.Sub(now)

	// The notice window opens a minute before the lead, so a snooze set
	// exactly PreNoticeLead ahead stays quiet.
	if !s.preNotified && until >= PreNoticeLead && until < PreNoticeLead+time.Minute {
		s.preNotified = true
		s.speaker.Speak(fmt.Sprintf("Alarm set for %s will go off in %d minutes.",
			spec.Label(), int(PreNoticeLead/time.Minute)))
	}

	if until > 0 || until <= -entity.AlarmTriggerWindow {
		return
	}

	key := fmt.Sprintf("%d:%d:%d", spec.Hours, spec.Minutes, now.Day())
	if s.lastFiredKey == key {
		return
	}
	s.lastFiredKey = key
	if s.firedKeyTimer != nil {
		s.firedKeyTimer.Stop()
	}
	s.firedKeyTimer = s.loop.AfterFunc(FiredKeyLifetime, func() {
		s.firedKeyTimer = nil
		if s.lastFiredKey == key {
			s.lastFiredKey = ""
		}
	})

	s.trigger(*spec)
}

func (s *schedulerService) trigger(spec entity.AlarmSpec) {
	if s.alarmRinging {
		s.log.Debug("Alarm already ringing, trigger skipped")
		return
	}

	s.alarmRinging = true
	s.preNotified = false
	metrics.ScheduleFired.WithLabelValues("alarm").Inc()
	s.log.WithField("alarm", spec.Label()).Info("Alarm ringing")
	s.events.Emit("alarm", scheduler.AlarmEvent{Ringing: true, Label: spec.Label()})

	s.notifyAlarm(spec)

	s.loop.AfterFunc(GreetingDelay, func() {
		s.greeter.Greeting(s.cfg.DefaultLocation, func(weather string) {
			s.speaker.Speak(fmt.Sprintf("Good morning. It is %s.%s", entity.FormatClock(s.loop.Now()), weather))
		})
	})
}

func (s *schedulerService) notifyAlarm(spec entity.AlarmSpec) {
	if s.notifier == nil || !s.notifier.Enabled() {
		return
	}

	subject := "Alarm " + spec.Label()
	body := fmt.Sprintf("Your alarm for %s is ringing.", spec.Label())

	var err error
	s.loop.Async(func() {
		ctx, cancel := context.WithTimeout(contextPkg.ForComponent("alarm-notify"), notifyTimeout)
		defer cancel()
		err = s.notifier.Notify(ctx, subject, body)
	}, func() {
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"alarm": spec.Label(),
				"error": err.Error(),
			}).Warn("Alarm notification failed")
		}
	})
}
