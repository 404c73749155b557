package schedulerService

import (
	"fmt"
	"sort"
	"strings"

	"avril/internal/api/scheduler"
	"avril/internal/entity"
	"avril/pkg/metrics"

	"github.com/sirupsen/logrus"
)

func (s *schedulerService) AddReminder(text string, hours, minutes int, day entity.DaySpec) (entity.ReminderItem, error) {
	text = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), ".!?"))
	if text == "" {
		return entity.ReminderItem{}, scheduler.ErrEmptyReminder
	}
	if !(entity.AlarmSpec{Hours: hours, Minutes: minutes}).Valid() {
		return entity.ReminderItem{}, scheduler.ErrInvalidTime
	}

	now := s.loop.Now()
	due := day.Resolve(now, hours, minutes)

	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return entity.ReminderItem{}, err
	}

	item := entity.ReminderItem{
		ID:        id,
		Text:      text,
		Hours:     hours,
		Minutes:   minutes,
		Timestamp: due.UnixMilli(),
	}
	if day.Kind != entity.DayAny {
		item.Day = due.Format(entity.DayLayout)
	}

	s.reminders = append(s.reminders, item)
	s.log.WithFields(logrus.Fields{
		"reminder_id": item.ID,
		"due":         due.Format("2006-01-02 15:04"),
	}).Info("Reminder added")

	return item, s.saveReminders()
}

func (s *schedulerService) CancelReminders(hours, minutes int, day entity.DaySpec) int {
	now := s.loop.Now()
	cancelled := 0

	for i := range s.reminders {
		r := &s.reminders[i]
		if r.Completed || r.Hours != hours || r.Minutes != minutes {
			continue
		}
		if !day.Matches(now, r.Due()) {
			continue
		}
		r.Completed = true
		r.CompletedAt = now.UnixMilli()
		cancelled++
	}

	if cancelled > 0 {
		_ = s.saveReminders()
	}
	return cancelled
}

func (s *schedulerService) CancelAllReminders() int {
	now := s.loop.Now().UnixMilli()
	cancelled := 0

	for i := range s.reminders {
		if !s.reminders[i].Completed {
			s.reminders[i].Completed = true
			s.reminders[i].CompletedAt = now
			cancelled++
		}
	}

	if cancelled > 0 {
		_ = s.saveReminders()
	}
	return cancelled
}

// Reminders returns the pending reminders, soonest first.
func (s *schedulerService) Reminders() []entity.ReminderItem {
	pending := make([]entity.ReminderItem, 0, len(s.reminders))
	for _, r := range s.reminders {
		if !r.Completed {
			pending = append(pending, r)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Timestamp < pending[j].Timestamp
	})
	return pending
}

func (s *schedulerService) checkReminders() {
	now := s.loop.Now()
	nowMs := now.UnixMilli()
	cutoff := now.Add(-CompletedTTL).UnixMilli()

	var (
		fired   []string
		changed bool
		kept    = s.reminders[:0]
	)

	for _, r := range s.reminders {
		if !r.Completed && r.Timestamp <= nowMs {
			r.Completed = true
			r.CompletedAt = nowMs
			fired = append(fired, fmt.Sprintf("Reminder: %s.", r.Text))
			changed = true
			metrics.ScheduleFired.WithLabelValues("reminder").Inc()
			s.log.WithField("reminder_id", r.ID).Info("Reminder fired")
		}
		if r.Completed && r.CompletedAt > 0 && r.CompletedAt < cutoff {
			changed = true
			continue
		}
		kept = append(kept, r)
	}
	s.reminders = kept

	if !changed {
		return
	}
	_ = s.saveReminders()

	if len(fired) > 0 {
		s.speaker.Speak(strings.Join(fired, " "))
	}
}

func (s *schedulerService) saveReminders() error {
	ctx, cancel := s.storeCtx()
	defer cancel()

	if err := s.repo.SaveReminders(ctx, s.reminders); err != nil {
		return scheduler.ErrPersist
	}
	return nil
}
