package entity

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var ErrIllegalTransition = errors.New("illegal recognition transition")

type RecognitionState uint8

const (
	RecognitionIdle       RecognitionState = 0
	RecognitionRequesting RecognitionState = 1
	RecognitionStreaming  RecognitionState = 2
	RecognitionMuted      RecognitionState = 3
	RecognitionFallback   RecognitionState = 4
)

var RecognitionStateMap = map[RecognitionState]string{
	RecognitionIdle:       "Idle",
	RecognitionRequesting: "Requesting",
	RecognitionStreaming:  "Streaming",
	RecognitionMuted:      "Muted",
	RecognitionFallback:   "Fallback",
}

func (r RecognitionState) String() string {
	return RecognitionStateMap[r]
}

func (r RecognitionState) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

var legalRecognitionTransitions = map[RecognitionState][]RecognitionState{
	RecognitionIdle:       {RecognitionRequesting},
	RecognitionRequesting: {RecognitionStreaming, RecognitionFallback, RecognitionIdle},
	RecognitionStreaming:  {RecognitionMuted, RecognitionFallback, RecognitionIdle},
	RecognitionMuted:      {RecognitionStreaming, RecognitionIdle},
	RecognitionFallback:   {RecognitionRequesting, RecognitionIdle},
}

// RecognitionStatus holds the capture pipeline state. The state itself can
// only change through Transition, which rejects moves outside the table above.
type RecognitionStatus struct {
	state           RecognitionState
	Active          bool `json:"active"`
	PausedForSpeech bool `json:"paused_for_speech"`
}

func (r *RecognitionStatus) State() RecognitionState {
	return r.state
}

func (r *RecognitionStatus) Transition(to RecognitionState) error {
	if r.state == to {
		return nil
	}
	for _, allowed := range legalRecognitionTransitions[r.state] {
		if allowed == to {
			r.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, r.state, to)
}

func (r *RecognitionStatus) Muted() bool {
	return r.state == RecognitionMuted
}

func (r *RecognitionStatus) Streaming() bool {
	return r.state == RecognitionStreaming
}

func (r RecognitionStatus) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal(struct {
		State           string `json:"state"`
		Active          bool   `json:"active"`
		PausedForSpeech bool   `json:"paused_for_speech"`
	}{r.state.String(), r.Active, r.PausedForSpeech})
}
