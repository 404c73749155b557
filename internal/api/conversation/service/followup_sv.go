package conversationService

import (
	"fmt"
	"regexp"

	commandService "avril/internal/api/command/service"
	weatherService "avril/internal/api/weather/service"
	"avril/internal/entity"
	"avril/pkg/nlp"

	"github.com/sirupsen/logrus"
)

const (
	nextReminderPrompt = `What should I remind you about? Say something like "remind me to call mom at 3 PM".`
	noMoreReminders    = "Okay, no more reminders for now."
	acknowledged       = "Okay."

	// Longer utterances are commands, not answers.
	maxAnswerWords = 4
)

var (
	tomorrowPattern  = regexp.MustCompile(`^(?:and|what about|how about)?\s*(?:for\s+)?tomorrow(?:\s+weather)?$`)
	otherCityPattern = regexp.MustCompile(`^(?:(?:what|how)\s+about\s+|and\s+(?:in|for)\s+)(?:the\s+weather\s+(?:in\s+|for\s+)?)?(?:in\s+)?(.+)$`)
)

func (s *conversationService) openFollowUp(f commandService.FollowUp) {
	pending := f.Pending
	if pending == "" {
		pending = entity.PendingNone
	}

	s.state.FollowUp = entity.FollowUpContext{
		Active:              true,
		LastCommandType:     f.Type,
		LastLocation:        f.Location,
		LastWeatherSnapshot: f.Snapshot,
		PendingQuestion:     pending,
		ExpiresAt:           s.loop.Now().Add(FollowUpWindow),
	}

	if s.followUpTimer != nil {
		s.followUpTimer.Stop()
	}
	s.followUpTimer = s.loop.AfterFunc(FollowUpWindow, s.expireFollowUp)

	s.log.WithFields(logrus.Fields{
		"type":    f.Type,
		"pending": pending,
	}).Debug("Follow-up opened")
}

func (s *conversationService) clearFollowUp() {
	if s.followUpTimer != nil {
		s.followUpTimer.Stop()
		s.followUpTimer = nil
	}
	s.state.FollowUp.Clear()
}

func (s *conversationService) expireFollowUp() {
	if !s.state.FollowUp.Active {
		return
	}
	s.log.WithField("type", s.state.FollowUp.LastCommandType).Debug("Follow-up expired")

	s.clearFollowUp()
	s.ResetWake()
	s.events.Emit("state", s.stateEvent(false))
}

// classify reads a short utterance as a yes/no answer unless it names a
// command, which is routed instead.
func (s *conversationService) classify(text, key string) nlp.Answer {
	if nlp.WordCount(key) > maxAnswerWords || s.router.IsCommand(text) {
		return nlp.AnswerUnknown
	}
	return nlp.ClassifyAnswer(key)
}

// answerFollowUp reports whether the utterance was understood relative to the
// open follow-up. Anything else is routed as a normal command.
func (s *conversationService) answerFollowUp(text, key string) bool {
	f := s.state.FollowUp

	switch f.LastCommandType {
	case entity.CommandWeather:
		return s.answerWeather(text, key, f)
	case entity.CommandReminder:
		return s.answerReminder(text, key, f)
	}
	return false
}

func (s *conversationService) answerWeather(text, key string, f entity.FollowUpContext) bool {
	if f.PendingQuestion == entity.PendingForecastConfirm {
		switch s.classify(text, key) {
		case nlp.AnswerYes:
			s.Deliver(text, commandService.Reply{
				Intent: "forecast_tomorrow",
				Text:   weatherService.DescribeTomorrow(f.LastLocation, f.LastWeatherSnapshot),
			})
			return true
		case nlp.AnswerNo:
			s.Deliver(text, commandService.Reply{Intent: "forecast_declined", Text: acknowledged})
			return true
		}
	}

	if tomorrowPattern.MatchString(key) {
		s.Deliver(text, commandService.Reply{
			Intent: "forecast_offer",
			Text:   fmt.Sprintf("Would you like tomorrow's forecast for %s?", f.LastLocation),
			FollowUp: &commandService.FollowUp{
				Type:     entity.CommandWeather,
				Location: f.LastLocation,
				Snapshot: f.LastWeatherSnapshot,
				Pending:  entity.PendingForecastConfirm,
			},
		})
		return true
	}

	if m := otherCityPattern.FindStringSubmatch(key); m != nil {
		s.router.Weather(m[1], func(reply commandService.Reply) {
			s.Deliver(text, reply)
		})
		return true
	}

	return false
}

func (s *conversationService) answerReminder(text, key string, f entity.FollowUpContext) bool {
	answer := s.classify(text, key)
	if answer == nlp.AnswerUnknown {
		return false
	}

	switch f.PendingQuestion {
	case entity.PendingAddAnotherReminder:
		if answer == nlp.AnswerNo {
			s.Deliver(text, commandService.Reply{Intent: "reminder_done", Text: noMoreReminders})
			return true
		}
		s.Deliver(text, commandService.Reply{Intent: "reminder_next", Text: nextReminderPrompt, KeepSession: true})
		s.state.Session.ExpectImmediateCommand = true
		return true

	case entity.PendingShowReminderList:
		if answer == nlp.AnswerNo {
			s.Deliver(text, commandService.Reply{Intent: "reminder_list_declined", Text: acknowledged})
			return true
		}
		s.Deliver(text, s.router.ListReminders())
		return true
	}

	return false
}
