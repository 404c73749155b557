package weatherService

import (
	"time"

	"avril/internal/entity"
	"avril/pkg/eventloop"
	"avril/pkg/wttr"

	"github.com/sirupsen/logrus"
)

const (
	CacheTTL             = 10 * time.Minute
	DefaultLookupTimeout = 4 * time.Second
	GreetingTimeout      = 3 * time.Second
)

// Answer is what a lookup produced. Snapshot is nil when nothing, fresh or
// stale, was available.
type Answer struct {
	Text     string
	Location string
	Snapshot *entity.WeatherSnapshot
	Stale    bool
}

type IWeatherService interface {
	// Lookup answers through done on the loop. It never blocks longer than
	// the configured timeout.
	Lookup(location string, done func(Answer))
	// Greeting produces the weather sentence appended to the alarm greeting.
	Greeting(location string, done func(string))
	Cached(location string) (entity.WeatherCacheEntry, bool)
}

type Config struct {
	LookupTimeout time.Duration
}

type weatherService struct {
	log      *logrus.Logger
	loop     eventloop.Loop
	state    *entity.EngineState
	provider wttr.IWeatherProvider
	cache    map[string]entity.WeatherCacheEntry
	timeout  time.Duration
}

func New(
	log *logrus.Logger,
	loop eventloop.Loop,
	state *entity.EngineState,
	provider wttr.IWeatherProvider,
	cfg Config,
) IWeatherService {
	timeout := cfg.LookupTimeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &weatherService{
		log:      log,
		loop:     loop,
		state:    state,
		provider: provider,
		cache:    make(map[string]entity.WeatherCacheEntry),
		timeout:  timeout,
	}
}
