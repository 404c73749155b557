// Package wttr fetches current conditions and tomorrow's forecast from the
// wttr.in JSON endpoint.
package wttr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"avril/internal/entity"

	jsoniter "github.com/json-iterator/go"
)

var ErrNoConditions = errors.New("wttr: response has no current conditions")

type IWeatherProvider interface {
	Fetch(ctx context.Context, location string) (entity.WeatherSnapshot, error)
}

type client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) IWeatherProvider {
	if baseURL == "" {
		baseURL = "https://wttr.in"
	}
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

type description struct {
	Value string `json:"value"`
}

type currentCondition struct {
	TempC       string        `json:"temp_C"`
	FeelsLikeC  string        `json:"FeelsLikeC"`
	Humidity    string        `json:"humidity"`
	WeatherDesc []description `json:"weatherDesc"`
}

type hourly struct {
	WeatherDesc []description `json:"weatherDesc"`
}

type day struct {
	MaxTempC string   `json:"maxtempC"`
	MinTempC string   `json:"mintempC"`
	Hourly   []hourly `json:"hourly"`
}

type payload struct {
	CurrentCondition []currentCondition `json:"current_condition"`
	Weather          []day              `json:"weather"`
}

// Fetch makes exactly one request; the caller bounds it through ctx.
func (c *client) Fetch(ctx context.Context, location string) (entity.WeatherSnapshot, error) {
	endpoint := fmt.Sprintf("%s/%s?format=j1", c.baseURL, url.PathEscape(location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entity.WeatherSnapshot{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return entity.WeatherSnapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entity.WeatherSnapshot{}, fmt.Errorf("wttr: unexpected status %d", resp.StatusCode)
	}

	var body payload
	if err := jsoniter.NewDecoder(resp.Body).Decode(&body); err != nil {
		return entity.WeatherSnapshot{}, fmt.Errorf("wttr: decode: %w", err)
	}

	return toSnapshot(location, body)
}

func toSnapshot(location string, body payload) (entity.WeatherSnapshot, error) {
	if len(body.CurrentCondition) == 0 {
		return entity.WeatherSnapshot{}, ErrNoConditions
	}
	current := body.CurrentCondition[0]

	snap := entity.WeatherSnapshot{
		Location:             location,
		ConditionDescription: firstDescription(current.WeatherDesc),
		TemperatureC:         atoi(current.TempC),
		FeelsLikeC:           atoi(current.FeelsLikeC),
		HumidityPercent:      atoi(current.Humidity),
	}

	if len(body.Weather) > 1 {
		tomorrow := body.Weather[1]
		forecast := &entity.ForecastDay{
			MaxTempC:             atoi(tomorrow.MaxTempC),
			MinTempC:             atoi(tomorrow.MinTempC),
			ConditionDescription: "unknown conditions",
		}
		if n := len(tomorrow.Hourly); n > 0 {
			// Midday slot describes the day best.
			forecast.ConditionDescription = firstDescription(tomorrow.Hourly[n/2].WeatherDesc)
		}
		snap.Tomorrow = forecast
	}

	return snap, nil
}

func firstDescription(d []description) string {
	if len(d) == 0 || strings.TrimSpace(d[0].Value) == "" {
		return "unknown conditions"
	}
	return strings.TrimSpace(d[0].Value)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
