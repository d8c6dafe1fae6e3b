package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by flow (password|google)
	// and result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agriserve_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"flow", "result"},
	)

	// OTPIssued counts one-time codes issued by trigger (signup|resend).
	OTPIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agriserve_otp_issued_total",
			Help: "Total number of one-time codes issued",
		},
		[]string{"trigger"},
	)

	// OTPVerifications counts verification attempts by outcome
	// (success|invalid|expired|already_verified).
	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agriserve_otp_verifications_total",
			Help: "Total number of OTP verification attempts",
		},
		[]string{"outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agriserve_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
