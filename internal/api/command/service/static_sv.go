package commandService

import (
	"fmt"
	"strings"

	"avril/internal/api/command"
	"avril/internal/entity"
)

var defaultJokes = []string{
	"Why do JavaScript developers wear glasses? Because they do not C sharp.",
	"I told my computer I needed a break, and it said: no problem, I will go to sleep.",
	"There are 10 kinds of people in the world: those who understand binary and those who do not.",
	"Why did the developer go broke? Because he used up all his cache.",
	"My Wi-Fi went down for five minutes, so I had to talk to my family. They seem like nice people.",
	"I asked an AI to tell me a joke about modern technology, and it said: 404 humour not found.",
}

const helpText = `Here are your commands: say "Hello" to wake me, then you can ask "What time is it?", ` +
	`"What is the date today?", "What is the weather in" followed by a city, ` +
	`"Set alarm for" followed by a time like "7:30 AM", "Stop alarm" to stop the alarm, ` +
	`"Cancel alarm" to delete the alarm, "Snooze" to snooze the alarm for 5 minutes, ` +
	`"Set a timer for" followed by a duration, "Remind me to" followed by a task and a time, ` +
	`"List reminders", "Show commands" to open the command list, "Close command list" to close it, ` +
	`or use any custom command you have saved.`

func (s *commandService) staticIntents() []intent {
	return []intent{
		{
			name: "joke",
			match: func(u utterance) bool {
				return u.key == "joke" || containsAny(u.key, "tell me a joke", "another joke")
			},
			handle: func(_ utterance, done func(Reply)) {
				done(reply(s.jokes[s.cfg.Pick(len(s.jokes))]))
			},
		},
		{
			name: "command_list_open",
			match: func(u utterance) bool {
				return containsAny(u.key, "show commands", "show command list", "open commands", "open command list")
			},
			handle: func(_ utterance, done func(Reply)) {
				s.events.Emit("command_list", command.CommandListEvent{Open: true})
				done(reply("Command list opened."))
			},
		},
		{
			name: "command_list_close",
			match: func(u utterance) bool {
				return containsAny(u.key, "close command list", "close commands", "hide command list", "hide commands")
			},
			handle: func(_ utterance, done func(Reply)) {
				s.events.Emit("command_list", command.CommandListEvent{Open: false})
				done(reply("Command list closed."))
			},
		},
		{
			name: "help",
			match: func(u utterance) bool {
				return containsAny(u.key, "command list", "list of commands", "what can you do")
			},
			handle: func(_ utterance, done func(Reply)) {
				done(reply(helpText))
			},
		},
		{
			name: "time",
			match: func(u utterance) bool {
				return containsAny(u.key, "what time is it", "whats the time", "what is the time", "current time", "tell me the time")
			},
			handle: func(_ utterance, done func(Reply)) {
				done(reply(fmt.Sprintf("It is %s.", entity.FormatClock(s.loop.Now()))))
			},
		},
		{
			name: "date",
			match: func(u utterance) bool {
				return containsAny(u.key, "what is the date", "whats the date", "date today", "todays date", "what day is it")
			},
			handle: func(_ utterance, done func(Reply)) {
				done(reply(fmt.Sprintf("Today is %s.", s.loop.Now().Format("Monday, 2 January 2006"))))
			},
		},
	}
}

var echoFragments = []string{
	"degrees celsius", "feeling like", "humidity", "percent",
	"what is your question", "would you like to add another reminder",
	"good morning it is", "will go off in",
}

func (s *commandService) fallbackIntents() []intent {
	return []intent{
		{
			name: "noise",
			match: func(u utterance) bool {
				return u.words < 2
			},
			handle: func(_ utterance, done func(Reply)) {
				done(Reply{Silent: true})
			},
		},
		{
			name: "tts_echo",
			match: func(u utterance) bool {
				return containsAny(u.key, echoFragments...)
			},
			handle: func(_ utterance, done func(Reply)) {
				done(Reply{Silent: true})
			},
		},
		{
			name: "unknown",
			match: func(utterance) bool { return true },
			handle: func(_ utterance, done func(Reply)) {
				done(reply(unknownCommand))
			},
		},
	}
}

func (s *commandService) useSeedJokes(jokes []string) {
	var kept []string
	for _, j := range jokes {
		if j = strings.TrimSpace(j); j != "" {
			kept = append(kept, j)
		}
	}
	if len(kept) > 0 {
		s.jokes = kept
	}
}
