package conversation

import "avril/internal/entity"

type TranscriptRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

type TranscriptResponse struct {
	Accepted bool `json:"accepted"`
}

type AudioResponse struct {
	Text string `json:"text"`
}

type MicRequest struct {
	Action string `json:"action" validate:"required,oneof=start stop mute unmute"`
}

type MicResponse struct {
	Recognition string `json:"recognition"`
	Muted       bool   `json:"muted"`
}

type StateResponse struct {
	Conversation string                 `json:"conversation"`
	Session      entity.SessionState    `json:"session"`
	FollowUp     entity.FollowUpContext `json:"follow_up"`
	Recognition  string                 `json:"recognition"`
	Speaking     bool                   `json:"speaking"`
	Asleep       bool                   `json:"asleep"`
	Online       bool                   `json:"online"`
}

// ResponseEvent is pushed to the console for every delivered reply. Long
// replies are shown word by word as subtitles.
type ResponseEvent struct {
	Heard    string `json:"heard"`
	Text     string `json:"text"`
	Subtitle bool   `json:"subtitle"`
}

type StateEvent struct {
	Conversation string `json:"conversation"`
	Listening    bool   `json:"listening"`
}
