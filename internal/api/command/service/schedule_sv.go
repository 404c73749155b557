package commandService

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"avril/internal/api/scheduler"
	"avril/internal/entity"
)

const (
	alarmClarification    = `I could not understand that time. Please say something like "set alarm for 7:30 AM".`
	durationClarification = `I could not understand that duration. Please say something like "set a timer for 5 minutes".`
	reminderClarification = `Please tell me when, for example "remind me to call mom at 3 PM".`
)

var (
	setAlarmPattern  = regexp.MustCompile(`(?:set|create|add)\s+(?:an\s+|the\s+|my\s+)?alarm\s+(?:for|at|to)?\s*(.+)`)
	timerForPattern  = regexp.MustCompile(`timer\s+(?:for\s+)?(.+)$`)
	remindPattern    = regexp.MustCompile(`remind\s+me\s+(?:to\s+|about\s+)?(.+)$`)
	atOnPattern      = regexp.MustCompile(`\s(?:at|on)\s`)
	cancelAllPattern = regexp.MustCompile(`(?:cancel|delete|remove|clear)\s+(?:all|every|all\s+my|all\s+of\s+my|all\s+the)\s+reminders?`)
	cancelOnePattern = regexp.MustCompile(`(?:cancel|delete|remove)\s+(?:the\s+|my\s+)?reminders?\s+(?:at|for|on)\s+(.+)$`)
)

func (s *commandService) timerIntent() intent {
	return intent{
		name: "timer",
		match: func(u utterance) bool {
			return hasWord(u.key, "timer")
		},
		handle: func(u utterance, done func(Reply)) {
			switch {
			case containsAny(u.key, "stop timer", "stop the timer", "pause timer", "pause the timer", "cancel timer", "cancel the timer"):
				s.scheduler.StopTimer()
				done(reply("Timer stopped."))
				return
			case containsAny(u.key, "reset timer", "reset the timer"):
				s.scheduler.ResetTimer()
				t := s.scheduler.Timer()
				if t.InitialSeconds == 0 {
					done(reply("There is no timer to reset."))
					return
				}
				done(reply(fmt.Sprintf("Timer reset to %s.", FormatDuration(t.InitialSeconds))))
				return
			}

			if seconds, ok := timerDuration(u.key); ok {
				if err := s.scheduler.SetTimer(seconds); err != nil {
					done(reply(durationClarification))
					return
				}
				done(reply(fmt.Sprintf("Timer set for %s.", FormatDuration(seconds))))
				return
			}

			if containsAny(u.key, "start timer", "start the timer", "resume timer", "resume the timer") {
				if err := s.scheduler.StartTimer(); errors.Is(err, scheduler.ErrNoTimer) {
					done(reply(`There is no timer to start. Say something like "set a timer for 5 minutes".`))
					return
				}
				done(reply("Timer started."))
				return
			}

			done(reply(durationClarification))
		},
	}
}

func timerDuration(key string) (int, bool) {
	if m := timerForPattern.FindStringSubmatch(key); m != nil {
		if seconds, ok := ParseDuration(m[1]); ok {
			return seconds, true
		}
	}
	// "set a 5 minute timer"
	if idx := strings.Index(key, "timer"); idx > 0 {
		seconds, ok := ParseDuration(key[:idx])
		if ok && durationUnits.MatchString(wordsToDigits(key[:idx])) {
			return seconds, true
		}
	}
	return 0, false
}

func (s *commandService) setAlarmIntent() intent {
	return intent{
		name: "alarm_set",
		match: func(u utterance) bool {
			return setAlarmPattern.MatchString(u.key)
		},
		handle: func(u utterance, done func(Reply)) {
			m := setAlarmPattern.FindStringSubmatch(u.key)
			spec, ok := ParseTime(m[1])
			if !ok {
				done(reply(alarmClarification))
				return
			}
			if err := s.scheduler.SetAlarm(spec); err != nil && !errors.Is(err, scheduler.ErrPersist) {
				done(reply(alarmClarification))
				return
			}
			done(reply(fmt.Sprintf("Alarm set for %s.", spec.Label())))
		},
	}
}

func (s *commandService) reminderIntents() []intent {
	return []intent{
		{
			name: "reminder_add",
			match: func(u utterance) bool {
				return remindPattern.MatchString(u.key)
			},
			handle: s.addReminder,
		},
		{
			name: "reminder_cancel_all",
			match: func(u utterance) bool {
				return cancelAllPattern.MatchString(u.key)
			},
			handle: func(_ utterance, done func(Reply)) {
				if n := s.scheduler.CancelAllReminders(); n == 0 {
					done(reply("You have no reminders."))
					return
				}
				done(reply("All reminders cancelled."))
			},
		},
		{
			name: "reminder_cancel",
			match: func(u utterance) bool {
				return cancelOnePattern.MatchString(u.key)
			},
			handle: s.cancelReminder,
		},
		{
			name: "reminder_list",
			match: func(u utterance) bool {
				return containsAny(u.key,
					"list reminders", "list my reminders", "show reminders", "show my reminders",
					"what are my reminders", "my reminders", "list tasks", "list my tasks", "what are my tasks")
			},
			handle: func(_ utterance, done func(Reply)) {
				done(reply(s.describeReminders()))
			},
		},
	}
}

// splitReminder finds where the reminder text ends and its when-part begins.
// A split whose remainder is exactly a day and time wins; otherwise the first
// one that parses at all.
func splitReminder(body string) (text string, day entity.DaySpec, spec entity.AlarmSpec, ok bool) {
	type candidate struct {
		text string
		day  entity.DaySpec
		spec entity.AlarmSpec
	}
	var loose *candidate

	for _, loc := range atOnPattern.FindAllStringIndex(body, -1) {
		head := strings.TrimSpace(body[:loc[0]])
		if head == "" {
			continue
		}
		d, rest := ParseDay(body[loc[1]:])
		if d.Kind == entity.DayAny {
			head, d = trailingDay(head)
		}
		if t, exact := parseTimeExact(rest); exact {
			return head, d, t, true
		}
		if loose == nil {
			if t, parsed := ParseTime(rest); parsed {
				loose = &candidate{head, d, t}
			}
		}
	}

	if loose != nil {
		return loose.text, loose.day, loose.spec, true
	}
	return "", entity.DaySpec{}, entity.AlarmSpec{}, false
}

// trailingDay lifts a day said before the time, as in "call mom tomorrow at
// 3 pm".
func trailingDay(head string) (string, entity.DaySpec) {
	words := strings.Fields(head)
	if len(words) < 2 {
		return head, entity.DaySpec{}
	}
	day, ok := dayToken(words[len(words)-1])
	if !ok {
		return head, entity.DaySpec{}
	}
	words = words[:len(words)-1]
	for len(words) > 1 && dayFiller[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " "), day
}

func (s *commandService) addReminder(u utterance, done func(Reply)) {
	body := remindPattern.FindStringSubmatch(u.key)[1]

	text, day, spec, ok := splitReminder(body)
	if !ok {
		done(reply(reminderClarification))
		return
	}

	item, err := s.scheduler.AddReminder(text, spec.Hours, spec.Minutes, day)
	if err != nil && !errors.Is(err, scheduler.ErrPersist) {
		done(reply(reminderClarification))
		return
	}

	done(Reply{
		Text: fmt.Sprintf("Okay, I'll remind you to %s at %s %s. Would you like to add another reminder?",
			item.Text, item.Label(), s.dayPhrase(item.Due())),
		FollowUp: &FollowUp{
			Type:    entity.CommandReminder,
			Pending: entity.PendingAddAnotherReminder,
		},
	})
}

func (s *commandService) cancelReminder(u utterance, done func(Reply)) {
	m := cancelOnePattern.FindStringSubmatch(u.key)
	day, rest := ParseDay(m[1])
	spec, ok := ParseTime(rest)
	if !ok {
		done(reply(`Please tell me the time of the reminder, for example "cancel reminder at 3 PM".`))
		return
	}

	n := s.scheduler.CancelReminders(spec.Hours, spec.Minutes, day)
	if n == 0 {
		done(reply(fmt.Sprintf("I couldn't find a reminder at %s.", spec.Label())))
		return
	}

	text := fmt.Sprintf("Cancelled %d reminder at %s.", n, spec.Label())
	if n > 1 {
		text = fmt.Sprintf("Cancelled %d reminders at %s.", n, spec.Label())
	}
	if len(s.scheduler.Reminders()) == 0 {
		done(reply(text))
		return
	}

	done(Reply{
		Text: text + " Would you like to hear your remaining reminders?",
		FollowUp: &FollowUp{
			Type:    entity.CommandReminder,
			Pending: entity.PendingShowReminderList,
		},
	})
}

func (s *commandService) ListReminders() Reply {
	return Reply{Intent: "reminder_list", Text: s.describeReminders()}
}

func (s *commandService) describeReminders() string {
	pending := s.scheduler.Reminders()
	switch len(pending) {
	case 0:
		return "You have no reminders."
	case 1:
		r := pending[0]
		return fmt.Sprintf("You have 1 reminder: %s at %s %s.", r.Text, r.Label(), s.dayPhrase(r.Due()))
	}

	parts := make([]string, len(pending))
	for i, r := range pending {
		parts[i] = fmt.Sprintf("%s at %s %s", r.Text, r.Label(), s.dayPhrase(r.Due()))
	}
	return fmt.Sprintf("You have %d reminders: %s, and %s.",
		len(pending), strings.Join(parts[:len(parts)-1], ", "), parts[len(parts)-1])
}

func (s *commandService) dayPhrase(due time.Time) string {
	now := s.loop.Now()
	due = due.In(now.Location())

	switch {
	case entity.DaySpec{Kind: entity.DayToday}.Matches(now, due):
		return "today"
	case entity.DaySpec{Kind: entity.DayTomorrow}.Matches(now, due):
		return "tomorrow"
	case due.Sub(now) < 7*24*time.Hour:
		return "on " + due.Weekday().String()
	default:
		return "on " + due.Format("Monday, 2 January")
	}
}
