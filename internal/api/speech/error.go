package speech

import "avril/pkg/response"

var (
	// ErrInvalidState is returned by a Recognizer asked to start while it is
	// already running.
	ErrInvalidState           = response.NewError(409, "recognizer already started")
	ErrRecognizerUnavailable  = response.NewError(503, "speech recognizer unavailable")
	ErrSynthesizerUnavailable = response.NewError(503, "speech synthesizer unavailable")
)
