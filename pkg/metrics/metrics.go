package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avril_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	Transcripts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avril_transcripts_total",
			Help: "Final transcripts received, by what the engine did with them",
		},
		[]string{"outcome"},
	)

	Intents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avril_intents_total",
			Help: "Routed utterances by matched intent",
		},
		[]string{"intent"},
	)

	RecognitionRestarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avril_recognition_restarts_total",
			Help: "Scheduled recognizer restarts by cause",
		},
		[]string{"cause"},
	)

	Utterances = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "avril_utterances_total",
			Help: "Utterances handed to the synthesizer",
		},
	)

	WeatherLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avril_weather_lookups_total",
			Help: "Weather answers by source",
		},
		[]string{"source"},
	)

	WeatherFetchLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "avril_weather_fetch_latency_seconds",
			Help: "Weather provider latency in seconds",
		},
	)

	ScheduleFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avril_schedule_fired_total",
			Help: "Scheduler notifications fired",
		},
		[]string{"kind"},
	)

	Asleep = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "avril_asleep",
			Help: "1 while the sleep screen is shown",
		},
	)

	ConsoleConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "avril_console_connected",
			Help: "1 while a console client is attached",
		},
	)
)
