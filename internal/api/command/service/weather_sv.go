package commandService

import (
	"regexp"
	"strings"

	"avril/internal/api/command"
	weatherService "avril/internal/api/weather/service"
	"avril/internal/entity"
	"avril/pkg/nlp"
)

var weatherPattern = regexp.MustCompile(`weather(?:\s+like)?(?:\s+(?:in|for|at))?\s+(.+)`)

var weatherFiller = []string{" right now", " today", " now", " like", " please"}

func (s *commandService) weatherIntent() intent {
	return intent{
		name: "weather",
		match: func(u utterance) bool {
			return hasWord(u.key, "weather")
		},
		handle: func(u utterance, done func(Reply)) {
			s.Weather(weatherLocation(u.key, s.cfg.DefaultLocation), done)
		},
	}
}

func weatherLocation(key, fallback string) string {
	location := ""
	if m := weatherPattern.FindStringSubmatch(key); m != nil {
		location = " " + m[1]
		for _, f := range weatherFiller {
			location = strings.TrimSuffix(location, f)
		}
		location = strings.TrimSpace(location)
	}
	if location == "" || location == "like" {
		return fallback
	}
	return location
}

// Weather looks up location and opens a weather follow-up when an answer
// with data came back.
func (s *commandService) Weather(location string, done func(Reply)) {
	s.events.Emit("status", command.StatusEvent{Text: "Checking weather for " + nlp.TitleCase(location) + "…"})

	s.weather.Lookup(location, func(a weatherService.Answer) {
		r := Reply{Intent: "weather", Text: a.Text}
		if a.Snapshot != nil {
			s.events.Emit("weather", a.Snapshot)
			r.FollowUp = &FollowUp{
				Type:     entity.CommandWeather,
				Location: a.Location,
				Snapshot: a.Snapshot,
				Pending:  entity.PendingNone,
			}
		}
		done(r)
	})
}
