package conversationService

import (
	"strings"

	commandService "avril/internal/api/command/service"
	"avril/internal/api/speech"
	"avril/pkg/metrics"
	"avril/pkg/nlp"

	"github.com/sirupsen/logrus"
)

func (s *conversationService) HandleTranscript(raw string) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return
	}

	now := s.loop.Now()
	normalized := strings.ToLower(text)
	if normalized == s.state.LastTranscript && now.Sub(s.state.LastTranscriptAt) < DuplicateWindow {
		s.log.WithField("text", normalized).Debug("Duplicate transcript dropped")
		metrics.Transcripts.WithLabelValues("duplicate").Inc()
		return
	}
	s.state.LastTranscript = normalized
	s.state.LastTranscriptAt = now

	s.activity.Touch("speech")

	// The alarm has to be stoppable while the assistant is talking over it.
	if reply, ok := s.router.AlarmControl(text); ok {
		metrics.Transcripts.WithLabelValues("alarm_control").Inc()
		s.Deliver(text, reply)
		return
	}

	if s.speaker.Speaking() {
		s.log.WithField("text", normalized).Debug("Transcript ignored while speaking")
		metrics.Transcripts.WithLabelValues("speaking").Inc()
		return
	}

	if reply, ok := s.router.MicControl(text); ok {
		metrics.Transcripts.WithLabelValues("mic_control").Inc()
		s.Deliver(text, reply)
		return
	}

	if s.state.FollowUp.Active {
		if s.state.FollowUp.Expired(now) {
			s.expireFollowUp()
		} else if s.answerFollowUp(text, nlp.Squash(text)) {
			metrics.Transcripts.WithLabelValues("follow_up").Inc()
			return
		}
	}

	session := s.state.Session
	switch {
	case session.ExpectImmediateCommand, session.SessionActive, s.state.FollowUp.Active:
		metrics.Transcripts.WithLabelValues("routed").Inc()
		s.route(text)
	case s.router.IsWakePhrase(text):
		metrics.Transcripts.WithLabelValues("wake").Inc()
		s.acknowledgeWake(text)
	default:
		metrics.Transcripts.WithLabelValues("ignored").Inc()
		s.log.WithField("text", normalized).Debug("Ignored phrase without wake word")
	}
}

func (s *conversationService) route(text string) {
	s.events.Emit("state", s.stateEvent(true))
	s.router.Route(text, func(reply commandService.Reply) {
		s.Deliver(text, reply)
	})
}

func (s *conversationService) acknowledgeWake(heard string) {
	s.state.Session.WakeActive = true
	s.state.Session.SessionActive = true
	s.state.Session.ExpectImmediateCommand = true
	s.activity.Touch("wake")

	s.log.WithFields(logrus.Fields{
		"heard": heard,
	}).Info("Wake phrase recognised")

	if s.chimer != nil {
		s.chimer.Chime(speech.ChimeStart)
	}
	s.events.Emit("state", s.stateEvent(true))
	s.speaker.Speak(wakePrompt)
}
