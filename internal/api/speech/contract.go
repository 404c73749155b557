package speech

import "avril/internal/entity"

// Recognizer error codes, as reported by continuous-mode recognizers.
const (
	ErrorNoSpeech          = "no-speech"
	ErrorAudioCapture      = "audio-capture"
	ErrorNetwork           = "network"
	ErrorAborted           = "aborted"
	ErrorNotAllowed        = "not-allowed"
	ErrorServiceNotAllowed = "service-not-allowed"
)

type RecognizerHandlers struct {
	OnResult func(transcript string)
	OnError  func(code string)
	OnEnd    func()
}

// Recognizer delivers final results only, one alternative each. Handlers may
// be called from any goroutine.
type Recognizer interface {
	Start() error
	Stop()
	SetHandlers(h RecognizerHandlers)
}

// Synthesizer speaks one utterance at a time and reports completion by
// utterance id. The callback may be called from any goroutine.
type Synthesizer interface {
	Speak(u entity.Utterance) error
	Cancel()
	SetOnFinished(fn func(utteranceID uint64, err error))
}

type ChimeKind string

const (
	ChimeStart ChimeKind = "start"
	ChimeStop  ChimeKind = "stop"
)

type Chimer interface {
	Chime(kind ChimeKind)
}

type StatusSink interface {
	Status(text string)
}
