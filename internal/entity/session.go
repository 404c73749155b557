package entity

import "time"

type SessionState struct {
	WakeActive             bool `json:"wake_active"`
	SessionActive          bool `json:"session_active"`
	ExpectImmediateCommand bool `json:"expect_immediate_command"`
}

func (s *SessionState) Reset() {
	s.WakeActive = false
	s.SessionActive = false
	s.ExpectImmediateCommand = false
}

type CommandType string

const (
	CommandNone     CommandType = "none"
	CommandWeather  CommandType = "weather"
	CommandReminder CommandType = "reminder"
)

type PendingQuestion string

const (
	PendingNone               PendingQuestion = "none"
	PendingForecastConfirm    PendingQuestion = "forecastConfirm"
	PendingAddAnotherReminder PendingQuestion = "addAnotherReminder"
	PendingShowReminderList   PendingQuestion = "showReminderList"
)

// FollowUpContext remembers the last answered command so a related utterance
// can be understood without a new wake phrase. Only one pending question can
// be open at a time.
type FollowUpContext struct {
	Active              bool             `json:"active"`
	LastCommandType     CommandType      `json:"last_command_type"`
	LastLocation        string           `json:"last_location,omitempty"`
	LastWeatherSnapshot *WeatherSnapshot `json:"last_weather_snapshot,omitempty"`
	PendingQuestion     PendingQuestion  `json:"pending_question"`
	ExpiresAt           time.Time        `json:"expires_at"`
}

func (f *FollowUpContext) Clear() {
	*f = FollowUpContext{
		LastCommandType: CommandNone,
		PendingQuestion: PendingNone,
	}
}

func (f *FollowUpContext) Expired(now time.Time) bool {
	return !f.Active || !now.Before(f.ExpiresAt)
}

type ConversationState uint8

const (
	ConversationDormant       ConversationState = 0
	ConversationAwakened      ConversationState = 1
	ConversationSessionActive ConversationState = 2
	ConversationFollowUp      ConversationState = 3
)

var ConversationStateMap = map[ConversationState]string{
	ConversationDormant:       "Dormant",
	ConversationAwakened:      "Awakened",
	ConversationSessionActive: "SessionActive",
	ConversationFollowUp:      "FollowUp",
}

func (c ConversationState) String() string {
	return ConversationStateMap[c]
}

type SpeechStatus struct {
	Speaking    bool   `json:"speaking"`
	UtteranceID uint64 `json:"utterance_id"`
}

// EngineState is the single aggregate of mutable assistant state. It is owned
// by the event loop and shared by reference between engine components.
type EngineState struct {
	Session     SessionState      `json:"session"`
	FollowUp    FollowUpContext   `json:"follow_up"`
	Recognition RecognitionStatus `json:"recognition"`
	Speech      SpeechStatus      `json:"speech"`

	LastTranscript   string    `json:"-"`
	LastTranscriptAt time.Time `json:"-"`

	Asleep bool `json:"asleep"`
	Online bool `json:"online"`
}

func NewEngineState() *EngineState {
	s := &EngineState{Online: true}
	s.FollowUp.Clear()
	return s
}

func (s *EngineState) Conversation() ConversationState {
	switch {
	case s.Session.ExpectImmediateCommand:
		return ConversationAwakened
	case s.FollowUp.Active:
		return ConversationFollowUp
	case s.Session.SessionActive:
		return ConversationSessionActive
	default:
		return ConversationDormant
	}
}
