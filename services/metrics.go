package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricPrefix = "staycation"

var (
	BookingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "_bookings_created_total",
		Help: "Total number of bookings created",
	})

	BookingsCancelledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "_bookings_cancelled_total",
		Help: "Total number of cancelled bookings by actor",
	}, []string{"by"})

	BookingTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "_booking_transitions_total",
		Help: "Booking status transitions by target status",
	}, []string{"status"})

	SweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "_sweep_runs_total",
		Help: "Cron sweep runs by job and outcome",
	}, []string{"job", "outcome"})

	AuthAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "_auth_attempts_total",
		Help: "Login attempts by method and outcome",
	}, []string{"method", "outcome"})
)
