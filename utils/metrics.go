package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodbot_messages_total",
			Help: "Inbound chat messages by delivery context",
		},
		[]string{"context"},
	)

	DialoguesFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodbot_dialogues_total",
			Help: "Food dialogues by terminal outcome",
		},
		[]string{"outcome"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodbot_search_requests_total",
			Help: "Business search calls by result",
		},
		[]string{"result"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "foodbot_search_duration_seconds",
			Help: "Duration of business search calls in seconds",
		},
	)
)
