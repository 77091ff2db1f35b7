package service

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psytest_attempts_started_total",
			Help: "Total number of test attempts started",
		},
		[]string{"caller"}, // guest | user
	)

	attemptsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psytest_attempts_completed_total",
			Help: "Total number of test attempts completed",
		},
		[]string{"saved"},
	)

	answersSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "psytest_answers_submitted_total",
			Help: "Total number of answers recorded, including overwrites",
		},
	)

	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psytest_auth_attempts_total",
			Help: "Total number of register and login attempts",
		},
		[]string{"op", "status"},
	)
)

func callerLabel(guest bool) string {
	if guest {
		return "guest"
	}
	return "user"
}

func savedLabel(saved bool) string {
	return strconv.FormatBool(saved)
}
