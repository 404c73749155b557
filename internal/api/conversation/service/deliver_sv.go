package conversationService

import (
	commandService "avril/internal/api/command/service"
	"avril/internal/api/conversation"
	"avril/internal/api/speech"

	"github.com/sirupsen/logrus"
)

// Deliver speaks a reply, shows it on the console and settles the session.
// Silent replies change nothing, so an echoed prompt does not use up the
// command the user was about to give.
func (s *conversationService) Deliver(heard string, reply commandService.Reply) {
	if reply.Silent || reply.Text == "" {
		s.log.WithFields(logrus.Fields{
			"heard":  heard,
			"intent": reply.Intent,
		}).Debug("Silent reply")
		return
	}

	s.log.WithFields(logrus.Fields{
		"heard":  heard,
		"intent": reply.Intent,
		"reply":  reply.Text,
	}).Info("Responding")

	s.events.Emit("response", conversation.ResponseEvent{
		Heard:    heard,
		Text:     reply.Text,
		Subtitle: len(reply.Text) > SubtitleThreshold,
	})
	s.speaker.Speak(reply.Text)

	switch {
	case reply.FollowUp != nil:
		s.openFollowUp(*reply.FollowUp)
		s.state.Session.ExpectImmediateCommand = false
	case reply.KeepSession:
		s.clearFollowUp()
		s.state.Session.SessionActive = true
		s.state.Session.ExpectImmediateCommand = false
	default:
		s.clearFollowUp()
		s.ResetWake()
	}

	s.events.Emit("state", s.stateEvent(false))
}

func (s *conversationService) ResetWake() {
	was := s.state.Session
	s.state.Session.Reset()

	if (was.WakeActive || was.SessionActive) && s.chimer != nil {
		s.chimer.Chime(speech.ChimeStop)
	}
}

func (s *conversationService) stateEvent(listening bool) conversation.StateEvent {
	return conversation.StateEvent{
		Conversation: s.state.Conversation().String(),
		Listening:    listening,
	}
}
