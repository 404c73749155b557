package consoleService

import (
	"avril/internal/api/console"
	"avril/internal/api/speech"
	"avril/internal/entity"
)

func (h *hub) Start() error {
	h.mu.Lock()
	if h.current == nil {
		h.mu.Unlock()
		return speech.ErrRecognizerUnavailable
	}
	if h.listening {
		h.mu.Unlock()
		return speech.ErrInvalidState
	}
	h.listening = true
	h.mu.Unlock()

	if !h.send(console.OutRecognitionStart, console.RecognitionStartPayload{Lang: h.cfg.Lang}) {
		h.mu.Lock()
		h.listening = false
		h.mu.Unlock()
		return speech.ErrRecognizerUnavailable
	}
	return nil
}

// Stop asks the console to stop listening. The console answers with
// recognition_end, which clears the listening flag.
func (h *hub) Stop() {
	h.send(console.OutRecognitionStop, nil)
}

func (h *hub) Speak(u entity.Utterance) error {
	if !h.send(console.OutSpeak, u) {
		return speech.ErrSynthesizerUnavailable
	}

	h.mu.Lock()
	h.speaking = true
	h.speakingID = u.ID
	h.mu.Unlock()
	return nil
}

func (h *hub) Cancel() {
	h.send(console.OutSpeakCancel, nil)
}

func (h *hub) Chime(kind speech.ChimeKind) {
	h.send(console.OutChime, console.ChimePayload{Kind: string(kind)})
}

// Status is remembered so a console that connects later shows the latest
// line.
func (h *hub) Status(text string) {
	h.mu.Lock()
	h.lastStatus = text
	h.mu.Unlock()

	h.send(console.OutStatus, console.StatusPayload{Text: text})
}
