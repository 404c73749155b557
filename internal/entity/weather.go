package entity

import "time"

type ForecastDay struct {
	ConditionDescription string `json:"condition_description"`
	MaxTempC             int    `json:"max_temp_c"`
	MinTempC             int    `json:"min_temp_c"`
}

type WeatherSnapshot struct {
	Location             string       `json:"location"`
	ConditionDescription string       `json:"condition_description"`
	TemperatureC         int          `json:"temperature_c"`
	FeelsLikeC           int          `json:"feels_like_c"`
	HumidityPercent      int          `json:"humidity_percent"`
	Tomorrow             *ForecastDay `json:"tomorrow,omitempty"`
}

type WeatherCacheEntry struct {
	Key       string
	Payload   WeatherSnapshot
	FetchedAt time.Time
}

func (e WeatherCacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}
