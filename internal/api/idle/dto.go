package idle

type SleepEvent struct {
	Asleep bool `json:"asleep"`
}

// ActivityEvent is what the console reports for pointer, keyboard and
// microphone activity.
type ActivityEvent struct {
	Kind      string  `json:"kind"`
	Amplitude float64 `json:"amplitude,omitempty"`
}
