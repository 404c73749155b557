package conversation

import "avril/pkg/response"

var (
	ErrEmptyTranscript        = response.NewError(400, "transcript is empty")
	ErrInvalidMicAction       = response.NewError(400, "unknown microphone action")
	ErrInvalidAudio           = response.NewError(400, "an audio file is required")
	ErrAudioTooLarge          = response.NewError(413, "audio file too large")
	ErrNothingHeard           = response.NewError(422, "no speech found in the audio file")
	ErrEngineBusy             = response.NewError(503, "assistant engine did not answer in time")
	ErrTranscriberUnavailable = response.NewError(503, "audio transcription is not configured")
)
