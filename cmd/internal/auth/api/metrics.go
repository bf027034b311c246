package authapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quill",
		Subsystem: "auth",
		Name:      "login_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quill",
		Subsystem: "auth",
		Name:      "refresh_total",
		Help:      "Explicit refresh-endpoint calls by outcome.",
	}, []string{"outcome"})

	silentRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quill",
		Subsystem: "auth",
		Name:      "silent_refresh_total",
		Help:      "Middleware-driven cookie refreshes by outcome.",
	}, []string{"outcome"})

	rotationTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quill",
		Subsystem: "auth",
		Name:      "refresh_rotations_total",
		Help:      "Refresh token rotations performed.",
	})

	revokeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quill",
		Subsystem: "auth",
		Name:      "revoke_total",
		Help:      "Revoke-endpoint calls.",
	})
)
