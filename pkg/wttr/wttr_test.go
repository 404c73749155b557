package wttr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
	"current_condition": [{"temp_C": "20", "FeelsLikeC": "19", "humidity": "55", "weatherDesc": [{"value": "Sunny"}]}],
	"weather": [
		{"maxtempC": "22", "mintempC": "12", "hourly": [{"weatherDesc": [{"value": "Clear"}]}]},
		{"maxtempC": "18", "mintempC": "10", "hourly": [
			{"weatherDesc": [{"value": "Mist"}]},
			{"weatherDesc": [{"value": "Light rain"}]},
			{"weatherDesc": [{"value": "Cloudy"}]}
		]}
	]
}`

func TestFetch_ParsesCurrentAndTomorrow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/london", r.URL.Path)
		assert.Equal(t, "j1", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	snap, err := New(srv.URL).Fetch(context.Background(), "london")
	require.NoError(t, err)
	assert.Equal(t, "Sunny", snap.ConditionDescription)
	assert.Equal(t, 20, snap.TemperatureC)
	assert.Equal(t, 19, snap.FeelsLikeC)
	assert.Equal(t, 55, snap.HumidityPercent)
	require.NotNil(t, snap.Tomorrow)
	assert.Equal(t, "Light rain", snap.Tomorrow.ConditionDescription)
	assert.Equal(t, 18, snap.Tomorrow.MaxTempC)
}

func TestFetch_HonoursContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(srv.URL).Fetch(ctx, "london")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Fetch(context.Background(), "london")
	assert.Error(t, err)
}
