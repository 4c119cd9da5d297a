package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_sessions_started_total",
			Help: "Total number of kiosk sessions started by workflow.",
		},
		[]string{"workflow"},
	)

	screensEnteredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_screens_entered_total",
			Help: "Total number of screen transitions by destination screen.",
		},
		[]string{"screen"},
	)

	paymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_payments_total",
			Help: "Total number of payment events by outcome.",
		},
		[]string{"outcome"},
	)

	timeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kiosk_timeouts_total",
		Help: "Total number of sessions reset by the inactivity watchdog.",
	})

	leaderboardFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kiosk_leaderboard_write_failures_total",
		Help: "Total number of leaderboard updates that could not be persisted.",
	})
)
