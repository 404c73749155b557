package commandService

import (
	"strings"

	"avril/pkg/metrics"
	"avril/pkg/nlp"

	"github.com/sirupsen/logrus"
)

// utterance is one routed phrase in the forms intents match against.
type utterance struct {
	raw   string
	key   string
	words int
}

func newUtterance(raw string) utterance {
	key := nlp.Squash(raw)
	return utterance{raw: raw, key: key, words: nlp.WordCount(key)}
}

// intent is one entry of the ordered routing table. match must be free of
// side effects; handle must call done exactly once.
type intent struct {
	name   string
	match  func(u utterance) bool
	handle func(u utterance, done func(Reply))
}

func (s *commandService) buildIntents() []intent {
	var intents []intent
	intents = append(intents, s.echoIntents()...)
	intents = append(intents, s.questionIntent())
	intents = append(intents, s.alarmControlIntents()...)
	intents = append(intents, s.micIntents()...)
	intents = append(intents, s.timerIntent())
	intents = append(intents, s.setAlarmIntent())
	intents = append(intents, s.reminderIntents()...)
	intents = append(intents, s.staticIntents()...)
	intents = append(intents, s.customIntent())
	intents = append(intents, s.weatherIntent())
	intents = append(intents, s.fallbackIntents()...)
	return intents
}

func (s *commandService) Route(raw string, done func(Reply)) {
	u := newUtterance(raw)
	if u.key == "" {
		done(Reply{Intent: "empty", Silent: true})
		return
	}

	for _, in := range s.intents {
		if !in.match(u) {
			continue
		}

		name := in.name
		s.log.WithFields(logrus.Fields{
			"intent": name,
			"text":   u.key,
		}).Debug("Intent matched")
		metrics.Intents.WithLabelValues(name).Inc()

		in.handle(u, func(r Reply) {
			if r.Intent == "" {
				r.Intent = name
			}
			done(r)
		})
		return
	}

	done(Reply{Intent: "unknown", Text: unknownCommand})
}

func (s *commandService) control(raw string, intents []intent) (Reply, bool) {
	u := newUtterance(raw)
	for _, in := range intents {
		if !in.match(u) {
			continue
		}
		var reply Reply
		in.handle(u, func(r Reply) { reply = r })
		if reply.Intent == "" {
			reply.Intent = in.name
		}
		metrics.Intents.WithLabelValues(in.name).Inc()
		return reply, true
	}
	return Reply{}, false
}

func (s *commandService) AlarmControl(raw string) (Reply, bool) {
	return s.control(raw, s.alarmControlIntents())
}

func (s *commandService) MicControl(raw string) (Reply, bool) {
	return s.control(raw, s.micIntents())
}

func (s *commandService) commandIntents() []intent {
	var intents []intent
	intents = append(intents, s.questionIntent())
	intents = append(intents, s.alarmControlIntents()...)
	intents = append(intents, s.micIntents()...)
	intents = append(intents, s.timerIntent())
	intents = append(intents, s.setAlarmIntent())
	intents = append(intents, s.reminderIntents()...)
	intents = append(intents, s.staticIntents()...)
	intents = append(intents, s.weatherIntent())
	return intents
}

func (s *commandService) IsCommand(raw string) bool {
	u := newUtterance(raw)
	if u.key == "" {
		return false
	}
	for _, in := range s.commands {
		if in.match(u) {
			return true
		}
	}
	return false
}

func (s *commandService) IsWakePhrase(raw string) bool {
	return IsWakePhrase(raw, s.cfg.AssistantName)
}

func containsAny(key string, phrases ...string) bool {
	return nlp.ContainsAny(key, phrases...)
}

func equalsAny(key string, phrases ...string) bool {
	for _, p := range phrases {
		if key == p {
			return true
		}
	}
	return false
}

func reply(text string) Reply {
	return Reply{Text: text}
}

func hasWord(key, word string) bool {
	return strings.Contains(" "+key+" ", " "+word+" ")
}
