package weatherService

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"avril/internal/entity"
	"avril/pkg/eventloop"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	calls int
	snap  entity.WeatherSnapshot
	err   error
}

func (f *fakeProvider) Fetch(ctx context.Context, location string) (entity.WeatherSnapshot, error) {
	f.calls++
	if f.err != nil {
		return entity.WeatherSnapshot{}, f.err
	}
	return f.snap, nil
}

func setup(t *testing.T) (*eventloop.Manual, *entity.EngineState, *fakeProvider, IWeatherService) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	loop := eventloop.NewManual(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	state := entity.NewEngineState()
	provider := &fakeProvider{snap: entity.WeatherSnapshot{
		ConditionDescription: "Sunny",
		TemperatureC:         20,
		FeelsLikeC:           19,
		HumidityPercent:      50,
	}}
	return loop, state, provider, New(log, loop, state, provider, Config{})
}

func lookup(loop *eventloop.Manual, svc IWeatherService, location string) Answer {
	var got Answer
	svc.Lookup(location, func(a Answer) { got = a })
	loop.Flush()
	return got
}

func TestLookup_FetchesAndDescribes(t *testing.T) {
	loop, _, provider, svc := setup(t)

	answer := lookup(loop, svc, "london")
	assert.Equal(t, 1, provider.calls)
	assert.Contains(t, answer.Text, "London")
	assert.Contains(t, answer.Text, "sunny")
	assert.Contains(t, answer.Text, "20")
	require.NotNil(t, answer.Snapshot)
	assert.False(t, answer.Stale)
}

func TestLookup_FreshCacheSkipsNetwork(t *testing.T) {
	loop, _, provider, svc := setup(t)

	lookup(loop, svc, "London")
	loop.Advance(9 * time.Minute)
	answer := lookup(loop, svc, "  london ")

	assert.Equal(t, 1, provider.calls)
	assert.Contains(t, answer.Text, "London")
}

func TestLookup_ExpiredCacheRefetchesWhenOnline(t *testing.T) {
	loop, _, provider, svc := setup(t)

	lookup(loop, svc, "london")
	loop.Advance(11 * time.Minute)
	lookup(loop, svc, "london")

	assert.Equal(t, 2, provider.calls)
}

func TestLookup_ExpiredCacheServedStaleWhenOffline(t *testing.T) {
	loop, state, provider, svc := setup(t)

	lookup(loop, svc, "london")
	loop.Advance(11 * time.Minute)
	state.Online = false

	answer := lookup(loop, svc, "london")
	assert.Equal(t, 1, provider.calls)
	assert.True(t, answer.Stale)
	assert.Contains(t, answer.Text, "offline")
	assert.Contains(t, answer.Text, "sunny")
}

func TestLookup_OfflineWithoutCache(t *testing.T) {
	loop, state, provider, svc := setup(t)
	state.Online = false

	answer := lookup(loop, svc, "paris")
	assert.Equal(t, 0, provider.calls)
	assert.Nil(t, answer.Snapshot)
	assert.Equal(t, offlineNoData, answer.Text)
}

func TestLookup_FailureFallsBackToStale(t *testing.T) {
	loop, _, provider, svc := setup(t)

	lookup(loop, svc, "london")
	loop.Advance(11 * time.Minute)
	provider.err = errors.New("connection reset")

	answer := lookup(loop, svc, "london")
	assert.True(t, answer.Stale)
	assert.Contains(t, answer.Text, "couldn't reach")
}

func TestLookup_FailureWithoutCache(t *testing.T) {
	loop, _, provider, svc := setup(t)
	provider.err = errors.New("boom")

	answer := lookup(loop, svc, "berlin")
	assert.Equal(t, "I couldn't fetch the weather for Berlin just now.", answer.Text)
}

func TestGreeting_FallsBackWhenFetchFails(t *testing.T) {
	loop, _, provider, svc := setup(t)
	provider.err = errors.New("boom")

	var got string
	svc.Greeting("London", func(s string) { got = s })
	loop.Flush()
	assert.Equal(t, " The weather is pleasant today.", got)

	provider.err = nil
	svc.Greeting("London", func(s string) { got = s })
	loop.Flush()
	assert.Equal(t, " The weather in London is sunny at 20 degrees Celsius.", got)
}

func TestDescribeTomorrow(t *testing.T) {
	snap := &entity.WeatherSnapshot{Tomorrow: &entity.ForecastDay{ConditionDescription: "Light rain", MaxTempC: 18, MinTempC: 10}}
	assert.Equal(t, "Tomorrow in London expect light rain, with a high of 18 and a low of 10 degrees Celsius.",
		DescribeTomorrow("London", snap))
	assert.Contains(t, DescribeTomorrow("London", &entity.WeatherSnapshot{}), "don't have")
}
