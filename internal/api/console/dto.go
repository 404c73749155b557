package console

import jsoniter "github.com/json-iterator/go"

// Message types sent to the console.
const (
	OutRecognitionStart = "recognition_start"
	OutRecognitionStop  = "recognition_stop"
	OutSpeak            = "speak"
	OutSpeakCancel      = "speak_cancel"
	OutChime            = "chime"
	OutStatus           = "status"
	// OutCaptureRequest asks the console to open the microphone and answer
	// with a capture event.
	OutCaptureRequest = "capture_request"
)

// Message types received from the console.
const (
	InTranscript       = "transcript"
	InRecognitionError = "recognition_error"
	InRecognitionEnd   = "recognition_end"
	InSpeechEnd        = "speech_end"
	InCapture          = "capture"
	InActivity         = "activity"
	InMic              = "mic"
	InCommand          = "command"
	InConnectivity     = "connectivity"
)

type Envelope struct {
	Type    string              `json:"type"`
	Payload jsoniter.RawMessage `json:"payload,omitempty"`
}

type OutboundMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type TranscriptPayload struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

type RecognitionErrorPayload struct {
	Code string `json:"code"`
}

type SpeechEndPayload struct {
	ID    uint64 `json:"id"`
	Error string `json:"error,omitempty"`
}

type CapturePayload struct {
	Granted bool   `json:"granted"`
	Reason  string `json:"reason,omitempty"`
}

type MicPayload struct {
	Action string `json:"action"`
}

// ConnectivityPayload mirrors the browser's online and offline events.
type ConnectivityPayload struct {
	Online bool `json:"online"`
}

type CommandPayload struct {
	Text string `json:"text"`
}

type RecognitionStartPayload struct {
	Lang string `json:"lang"`
}

type ChimePayload struct {
	Kind string `json:"kind"`
}

type StatusPayload struct {
	Text string `json:"text"`
}
