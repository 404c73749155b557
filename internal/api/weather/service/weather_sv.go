package weatherService

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"avril/internal/api/weather"
	"avril/internal/entity"
	contextPkg "avril/pkg/context"
	"avril/pkg/metrics"
	"avril/pkg/nlp"

	"github.com/sirupsen/logrus"
)

const (
	offlineNoData   = "I'm offline and can't fetch weather data. Please check your internet connection."
	timeoutNoData   = "Weather request timed out. I'm having trouble connecting to the weather service."
	offlineCaveat   = "I'm offline, so this is the last weather I have."
	failedCaveat    = "I couldn't reach the weather service, so this is the last weather I have."
	pleasantWeather = " The weather is pleasant today."
)

func cacheKey(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

func Describe(display string, snap entity.WeatherSnapshot) string {
	return fmt.Sprintf("Weather in %s is %s at %d degrees Celsius, feeling like %d, humidity %d percent.",
		display,
		strings.ToLower(snap.ConditionDescription),
		snap.TemperatureC,
		snap.FeelsLikeC,
		snap.HumidityPercent,
	)
}

// DescribeTomorrow renders the forecast offered after "and tomorrow".
func DescribeTomorrow(display string, snap *entity.WeatherSnapshot) string {
	if snap == nil || snap.Tomorrow == nil {
		return fmt.Sprintf("I don't have tomorrow's forecast for %s right now.", display)
	}
	return fmt.Sprintf("Tomorrow in %s expect %s, with a high of %d and a low of %d degrees Celsius.",
		display,
		strings.ToLower(snap.Tomorrow.ConditionDescription),
		snap.Tomorrow.MaxTempC,
		snap.Tomorrow.MinTempC,
	)
}

func (s *weatherService) Cached(location string) (entity.WeatherCacheEntry, bool) {
	entry, ok := s.cache[cacheKey(location)]
	return entry, ok
}

func (s *weatherService) Lookup(location string, done func(Answer)) {
	key := cacheKey(location)
	display := nlp.TitleCase(key)
	now := s.loop.Now()

	entry, cached := s.cache[key]
	if cached && entry.Fresh(now, CacheTTL) {
		metrics.WeatherLookups.WithLabelValues("cache").Inc()
		done(s.answer(display, entry.Payload, false, ""))
		return
	}

	if !s.state.Online {
		if cached {
			metrics.WeatherLookups.WithLabelValues("stale").Inc()
			done(s.answer(display, entry.Payload, true, offlineCaveat))
			return
		}
		metrics.WeatherLookups.WithLabelValues("failed").Inc()
		s.log.WithFields(logrus.Fields{
			"location": key,
			"error":    weather.ErrOffline.Error(),
		}).Warn("Weather lookup skipped")
		done(Answer{Text: offlineNoData, Location: display})
		return
	}

	var (
		snap    entity.WeatherSnapshot
		err     error
		started time.Time
	)
	s.loop.Async(func() {
		ctx, cancel := context.WithTimeout(contextPkg.ForComponent("weather"), s.timeout)
		defer cancel()

		started = time.Now()
		snap, err = s.provider.Fetch(ctx, key)
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", weather.ErrFetchTimeout, err)
		}
	}, func() {
		metrics.WeatherFetchLatency.Observe(time.Since(started).Seconds())

		if err == nil {
			snap.Location = display
			s.cache[key] = entity.WeatherCacheEntry{Key: key, Payload: snap, FetchedAt: s.loop.Now()}
			metrics.WeatherLookups.WithLabelValues("network").Inc()
			done(s.answer(display, snap, false, ""))
			return
		}

		s.log.WithFields(logrus.Fields{
			"location": key,
			"error":    err.Error(),
		}).Warn("Weather fetch failed")

		if stale, ok := s.cache[key]; ok {
			metrics.WeatherLookups.WithLabelValues("stale").Inc()
			done(s.answer(display, stale.Payload, true, failedCaveat))
			return
		}

		metrics.WeatherLookups.WithLabelValues("failed").Inc()
		if errors.Is(err, weather.ErrFetchTimeout) {
			done(Answer{Text: timeoutNoData, Location: display})
			return
		}
		done(Answer{Text: fmt.Sprintf("I couldn't fetch the weather for %s just now.", display), Location: display})
	})
}

func (s *weatherService) answer(display string, snap entity.WeatherSnapshot, stale bool, caveat string) Answer {
	text := Describe(display, snap)
	if caveat != "" {
		text = caveat + " " + text
	}
	return Answer{
		Text:     text,
		Location: display,
		Snapshot: &snap,
		Stale:    stale,
	}
}

func (s *weatherService) Greeting(location string, done func(string)) {
	key := cacheKey(location)
	display := nlp.TitleCase(key)

	sentence := func(snap entity.WeatherSnapshot) string {
		return fmt.Sprintf(" The weather in %s is %s at %d degrees Celsius.",
			display, strings.ToLower(snap.ConditionDescription), snap.TemperatureC)
	}

	if entry, ok := s.cache[key]; ok && entry.Fresh(s.loop.Now(), CacheTTL) {
		done(sentence(entry.Payload))
		return
	}
	if !s.state.Online {
		done(pleasantWeather)
		return
	}

	var (
		snap entity.WeatherSnapshot
		err  error
	)
	s.loop.Async(func() {
		ctx, cancel := context.WithTimeout(contextPkg.ForComponent("alarm-greeting"), GreetingTimeout)
		defer cancel()
		snap, err = s.provider.Fetch(ctx, key)
	}, func() {
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"location": key,
				"error":    err.Error(),
			}).Warn("Could not fetch weather for alarm greeting")
			done(pleasantWeather)
			return
		}
		snap.Location = display
		s.cache[key] = entity.WeatherCacheEntry{Key: key, Payload: snap, FetchedAt: s.loop.Now()}
		done(sentence(snap))
	})
}
