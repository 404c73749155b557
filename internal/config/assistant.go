package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	RecognizerConsole = "console"
	RecognizerStream  = "stream"

	SynthesizerConsole = "console"
	SynthesizerOpenAI  = "openai"
)

// AssistantConfig is everything the engine reads from the environment.
type AssistantConfig struct {
	Name            string
	Lang            string
	Voice           string
	DefaultLocation string

	StoreDriver     string
	CommandSeedPath string

	WeatherURL     string
	WeatherTimeout time.Duration

	IdleTimeout   time.Duration
	IdleThreshold float64

	Recognizer     string
	StreamURL      string
	StreamToken    string
	CaptureCommand []string

	Synthesizer   string
	OpenAIKey     string
	TTSVoice      string
	PlayerCommand []string

	Port      string
	RateLimit float64
	RateBurst int
}

// Headless reports whether the server owns the microphone instead of a
// browser console.
func (c AssistantConfig) Headless() bool {
	return c.Recognizer == RecognizerStream
}

func LoadAssistantConfig() AssistantConfig {
	return AssistantConfig{
		Name:            envString("ASSISTANT_NAME", "Avril"),
		Lang:            envString("ASSISTANT_LANG", "en-GB"),
		Voice:           envString("ASSISTANT_VOICE", ""),
		DefaultLocation: envString("WEATHER_DEFAULT_LOCATION", "London"),

		StoreDriver:     strings.ToLower(envString("STORE_DRIVER", "sqlite")),
		CommandSeedPath: envString("COMMAND_SEED_PATH", "./config/commands.yaml"),

		WeatherURL:     envString("WEATHER_URL", "https://wttr.in"),
		WeatherTimeout: envDuration("WEATHER_TIMEOUT", 4*time.Second),

		IdleTimeout:   envDuration("IDLE_TIMEOUT", 10*time.Second),
		IdleThreshold: envFloat("IDLE_THRESHOLD", 0.08),

		Recognizer:     strings.ToLower(envString("RECOGNIZER", RecognizerConsole)),
		StreamURL:      envString("STT_STREAM_URL", ""),
		StreamToken:    envString("STT_STREAM_TOKEN", ""),
		CaptureCommand: strings.Fields(envString("AUDIO_CAPTURE_COMMAND", "arecord -q -f S16_LE -r 16000 -c 1 -t raw")),

		Synthesizer:   strings.ToLower(envString("SYNTHESIZER", SynthesizerConsole)),
		OpenAIKey:     envString("OPENAI_API_KEY", ""),
		TTSVoice:      envString("OPENAI_TTS_VOICE", "nova"),
		PlayerCommand: strings.Fields(envString("AUDIO_PLAYER_COMMAND", "mpg123 -q -")),

		Port:      envString("APP_PORT", "3000"),
		RateLimit: envFloat("RATE_LIMIT_RPS", 10),
		RateBurst: envInt("RATE_LIMIT_BURST", 20),
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
