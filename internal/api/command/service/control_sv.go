package commandService

import (
	"fmt"
	"strings"
	"time"

	schedulerService "avril/internal/api/scheduler/service"
)

const (
	ownPrompt      = "what is your command"
	unknownCommand = "I can't understand that command."
)

func (s *commandService) echoIntents() []intent {
	return []intent{{
		name: "echo",
		match: func(u utterance) bool {
			return u.key == ownPrompt || s.IsWakePhrase(u.raw)
		},
		handle: func(_ utterance, done func(Reply)) {
			done(Reply{Silent: true})
		},
	}}
}

func (s *commandService) questionIntent() intent {
	return intent{
		name: "question",
		match: func(u utterance) bool {
			return strings.HasPrefix(u.key, "i have a question")
		},
		handle: func(_ utterance, done func(Reply)) {
			done(Reply{Text: "What is your question?", KeepSession: true})
		},
	}
}

func (s *commandService) alarmControlIntents() []intent {
	return []intent{
		{
			name: "alarm_stop",
			match: func(u utterance) bool {
				return containsAny(u.key, "stop alarm", "stop the alarm", "turn off the alarm", "turn off alarm")
			},
			handle: func(_ utterance, done func(Reply)) {
				s.scheduler.StopAlarm()
				done(reply("Alarm stopped."))
			},
		},
		{
			name: "alarm_cancel",
			match: func(u utterance) bool {
				return containsAny(u.key, "cancel alarm", "delete alarm", "clear alarm", "cancel the alarm", "delete the alarm")
			},
			handle: func(_ utterance, done func(Reply)) {
				s.scheduler.CancelAlarm()
				done(reply("Alarm cancelled."))
			},
		},
		{
			name: "alarm_snooze",
			match: func(u utterance) bool {
				return hasWord(u.key, "snooze")
			},
			handle: func(_ utterance, done func(Reply)) {
				s.scheduler.SnoozeAlarm()
				done(reply(fmt.Sprintf("Alarm snoozed for %d minutes.", int(schedulerService.SnoozeDuration/time.Minute))))
			},
		},
	}
}

func (s *commandService) micIntents() []intent {
	return []intent{
		{
			name: "mic_mute",
			match: func(u utterance) bool {
				return equalsAny(u.key, "mute", "mute mic", "mute microphone", "mute the microphone", "mute the mic")
			},
			handle: func(_ utterance, done func(Reply)) {
				if !s.mic.Muted() {
					s.mic.ToggleMute()
				}
				done(reply("Microphone muted."))
			},
		},
		{
			name: "mic_unmute",
			match: func(u utterance) bool {
				return equalsAny(u.key, "unmute", "unmute mic", "unmute microphone", "unmute the microphone", "unmute the mic")
			},
			handle: func(_ utterance, done func(Reply)) {
				if s.mic.Muted() {
					s.mic.ToggleMute()
				}
				done(reply("Microphone unmuted."))
			},
		},
	}
}
