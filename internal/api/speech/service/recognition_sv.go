package speechService

import (
	"errors"
	"strings"
	"time"

	"avril/internal/api/speech"
	"avril/internal/entity"
	"avril/pkg/metrics"

	"github.com/sirupsen/logrus"
)

var recoverableErrors = map[string]bool{
	speech.ErrorNoSpeech:     true,
	speech.ErrorAudioCapture: true,
	speech.ErrorNetwork:      true,
	speech.ErrorAborted:      true,
}

func (m *recognitionManager) OnFinalTranscript(fn func(transcript string)) {
	m.transcriptHandlers = append(m.transcriptHandlers, fn)
}

func (m *recognitionManager) OnError(fn func(code string)) {
	m.errorHandlers = append(m.errorHandlers, fn)
}

func (m *recognitionManager) OnStateChange(fn func(from, to entity.RecognitionState)) {
	m.stateHandlers = append(m.stateHandlers, fn)
}

func (m *recognitionManager) transition(to entity.RecognitionState) bool {
	from := m.state.Recognition.State()
	if from == to {
		return true
	}
	if err := m.state.Recognition.Transition(to); err != nil {
		m.log.WithFields(logrus.Fields{
			"from":  from.String(),
			"to":    to.String(),
			"error": err.Error(),
		}).Debug("Recognition transition refused")
		return false
	}
	for _, fn := range m.stateHandlers {
		fn(from, to)
	}
	return true
}

func (m *recognitionManager) Start(playAck bool) {
	rec := &m.state.Recognition
	if rec.Active || !rec.Streaming() || rec.PausedForSpeech {
		return
	}

	m.cancelRestart()
	m.stopRequested = false
	m.errored = false

	if err := m.recognizer.Start(); err != nil {
		if errors.Is(err, speech.ErrInvalidState) {
			rec.Active = true
			return
		}
		m.log.WithError(err).Warn("Speech recognition failed to start")
		return
	}
	rec.Active = true

	now := m.loop.Now()
	if playAck && now.Sub(m.lastChime) >= ChimeCooldown {
		m.chimer.Chime(speech.ChimeStart)
		m.lastChime = now
	}
}

func (m *recognitionManager) Stop() {
	m.halt()
	m.chimer.Chime(speech.ChimeStop)
}

// halt stops the recognizer without auto-restart or chime.
func (m *recognitionManager) halt() {
	m.cancelRestart()
	if m.state.Recognition.Active {
		m.stopRequested = true
		m.recognizer.Stop()
	}
	m.state.Recognition.Active = false
}

func (m *recognitionManager) RequestCapture() {
	if m.transition(entity.RecognitionRequesting) {
		m.status.Status("Requesting microphone access")
	}
}

func (m *recognitionManager) CaptureGranted() {
	if !m.transition(entity.RecognitionStreaming) {
		return
	}
	m.fallbackAnnounced = false
	m.state.Recognition.PausedForSpeech = false
	m.status.Status("Listening for the wake word")
	m.Start(true)
}

func (m *recognitionManager) CaptureDenied(reason string) {
	m.log.WithField("reason", reason).Warn("Microphone capture unavailable")
	m.halt()
	m.state.Recognition.PausedForSpeech = false
	if !m.transition(entity.RecognitionFallback) {
		return
	}
	if !m.fallbackAnnounced {
		m.status.Status(fallbackStatus)
		m.fallbackAnnounced = true
	}
}

func (m *recognitionManager) ReleaseCapture() {
	wasActive := m.state.Recognition.Active
	m.halt()
	m.state.Recognition.PausedForSpeech = false
	m.transition(entity.RecognitionIdle)
	if wasActive {
		m.chimer.Chime(speech.ChimeStop)
	}
	m.status.Status("Microphone off")
}

func (m *recognitionManager) ToggleMute() bool {
	switch m.state.Recognition.State() {
	case entity.RecognitionStreaming:
		m.halt()
		m.transition(entity.RecognitionMuted)
		m.status.Status("Microphone muted")
		return true
	case entity.RecognitionMuted:
		m.transition(entity.RecognitionStreaming)
		m.status.Status("Listening for the wake word")
		m.Start(false)
		return false
	}
	return m.state.Recognition.Muted()
}

func (m *recognitionManager) Muted() bool {
	return m.state.Recognition.Muted()
}

func (m *recognitionManager) PauseForSpeech() bool {
	rec := &m.state.Recognition
	if rec.Active {
		m.halt()
		rec.PausedForSpeech = true
		return true
	}
	// A pending restart becomes a resume once output ends.
	if m.restartTimer != nil {
		m.cancelRestart()
		rec.PausedForSpeech = true
	}
	return rec.PausedForSpeech
}

func (m *recognitionManager) ResumeAfterSpeech() {
	if !m.state.Recognition.PausedForSpeech {
		return
	}
	m.state.Recognition.PausedForSpeech = false
	m.Start(false)
}

func (m *recognitionManager) onResult(transcript string) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" || !m.state.Recognition.Streaming() {
		return
	}
	for _, fn := range m.transcriptHandlers {
		fn(transcript)
	}
}

func (m *recognitionManager) onError(code string) {
	m.state.Recognition.Active = false
	m.errored = true

	fields := logrus.Fields{"code": code}
	for _, fn := range m.errorHandlers {
		fn(code)
	}

	switch {
	case code == speech.ErrorNotAllowed || code == speech.ErrorServiceNotAllowed:
		m.CaptureDenied(code)
	case recoverableErrors[code]:
		m.log.WithFields(fields).Debug("Recognition error, restarting")
		m.scheduleRestart(ErrorRestartDelay, "error")
	default:
		m.log.WithFields(fields).Warn("Recognition error")
	}
}

func (m *recognitionManager) onEnd() {
	m.state.Recognition.Active = false

	if m.stopRequested {
		m.stopRequested = false
		return
	}
	// An error already decided whether to restart.
	if m.errored {
		m.errored = false
		return
	}
	m.scheduleRestart(EndRestartDelay, "end")
}

func (m *recognitionManager) scheduleRestart(delay time.Duration, cause string) {
	rec := &m.state.Recognition
	if !rec.Streaming() || rec.PausedForSpeech || m.stopRequested {
		return
	}

	m.cancelRestart()
	m.restartTimer = m.loop.AfterFunc(delay, func() {
		m.restartTimer = nil
		metrics.RecognitionRestarts.WithLabelValues(cause).Inc()
		m.Start(false)
	})
}

func (m *recognitionManager) cancelRestart() {
	if m.restartTimer != nil {
		m.restartTimer.Stop()
		m.restartTimer = nil
	}
}
