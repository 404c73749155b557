package consoleService

import (
	"errors"

	"avril/internal/api/console"
	"avril/internal/api/idle"

	"github.com/sirupsen/logrus"
)

func (h *hub) dispatch(data []byte) {
	var env console.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.log.WithField("error", err.Error()).Warn("Ignoring malformed console message")
		return
	}

	if err := h.handle(env); err != nil {
		h.log.WithFields(logrus.Fields{
			"type":  env.Type,
			"error": err.Error(),
		}).Warn("Ignoring console message")
	}
}

func (h *hub) decode(env console.Envelope, v interface{}) error {
	if len(env.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return console.ErrMalformed
	}
	return nil
}

func (h *hub) handle(env console.Envelope) error {
	h.mu.Lock()
	handlers := h.handlers
	h.mu.Unlock()

	switch env.Type {
	case console.InTranscript:
		var p console.TranscriptPayload
		if err := h.decode(env, &p); err != nil {
			return err
		}
		if p.Final && handlers.OnResult != nil {
			handlers.OnResult(p.Text)
		}

	case console.InRecognitionError:
		var p console.RecognitionErrorPayload
		if err := h.decode(env, &p); err != nil {
			return err
		}
		if handlers.OnError != nil {
			handlers.OnError(p.Code)
		}

	case console.InRecognitionEnd:
		h.mu.Lock()
		h.listening = false
		h.mu.Unlock()
		if handlers.OnEnd != nil {
			handlers.OnEnd()
		}

	case console.InSpeechEnd:
		var p console.SpeechEndPayload
		if err := h.decode(env, &p); err != nil {
			return err
		}
		h.speechEnded(p)

	case console.InCapture:
		var p console.CapturePayload
		if err := h.decode(env, &p); err != nil {
			return err
		}
		h.post(func(in Inbound) { in.Capture(p.Granted, p.Reason) })

	case console.InActivity:
		var p idle.ActivityEvent
		if err := h.decode(env, &p); err != nil {
			return err
		}
		h.post(func(in Inbound) { in.Activity(p) })

	case console.InMic:
		var p console.MicPayload
		if err := h.decode(env, &p); err != nil {
			return err
		}
		h.post(func(in Inbound) { in.Mic(p.Action) })

	case console.InCommand:
		var p console.CommandPayload
		if err := h.decode(env, &p); err != nil {
			return err
		}
		h.post(func(in Inbound) { in.Command(p.Text) })

	case console.InConnectivity:
		var p console.ConnectivityPayload
		if err := h.decode(env, &p); err != nil {
			return err
		}
		h.post(func(in Inbound) { in.Connectivity(p.Online) })

	default:
		return console.ErrUnknownMessage
	}

	return nil
}

func (h *hub) speechEnded(p console.SpeechEndPayload) {
	h.mu.Lock()
	if h.speaking && h.speakingID == p.ID {
		h.speaking = false
	}
	finished := h.onFinished
	h.mu.Unlock()

	if finished == nil {
		return
	}
	var err error
	if p.Error != "" {
		err = errors.New(p.Error)
	}
	finished(p.ID, err)
}
