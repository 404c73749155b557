package schedulerService

import (
	"context"
	"errors"

	contextPkg "avril/pkg/context"
	"avril/pkg/eventloop"

	"github.com/sirupsen/logrus"
)

func (s *schedulerService) storeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(contextPkg.ForComponent("scheduler"), storeTimeout)
}

// Load restores alarm, reminders and the announce interval. Missing keys
// keep the defaults. Every source is attempted even when one fails.
func (s *schedulerService) Load(ctx context.Context) error {
	var errs []error

	record, err := s.repo.LoadAlarm(ctx)
	if err != nil {
		errs = append(errs, err)
	} else {
		s.alarm = record
	}

	items, err := s.repo.LoadReminders(ctx)
	if err != nil {
		errs = append(errs, err)
	} else {
		s.reminders = items
	}

	minutes, found, err := s.repo.LoadAnnounceInterval(ctx)
	switch {
	case err != nil:
		errs = append(errs, err)
	case found && validInterval(minutes):
		s.announceMinutes = minutes
	}

	fields := logrus.Fields{
		"reminders":        len(s.reminders),
		"announce_minutes": s.announceMinutes,
	}
	if spec := s.alarm.Effective(); spec != nil {
		fields["alarm"] = spec.Label()
	}
	s.log.WithFields(fields).Info("Schedule restored")

	return errors.Join(errs...)
}

func (s *schedulerService) Start() {
	if s.alarmPoll == nil {
		s.alarmPoll = s.loop.Every(s.cfg.AlarmPoll, s.checkAlarm)
	}
	if s.reminderPoll == nil {
		s.reminderPoll = s.loop.Every(s.cfg.ReminderPoll, s.checkReminders)
	}
	s.scheduleAnnounce()
	s.cron.Start()
}

func (s *schedulerService) Stop() {
	for _, t := range []*eventloop.Timer{&s.alarmPoll, &s.reminderPoll, &s.timerTick, &s.firedKeyTimer} {
		if *t != nil {
			(*t).Stop()
			*t = nil
		}
	}
	<-s.cron.Stop().Done()
}
