package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freshwallet_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "freshwallet_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PointsEarnedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "freshwallet_points_earned_total",
			Help: "Total points credited through the earning flow",
		},
	)

	DuplicateEarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "freshwallet_duplicate_earnings_total",
			Help: "Earning events rejected as replays of an already credited event",
		},
	)

	RedemptionsIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "freshwallet_redemptions_issued_total",
			Help: "Total redemption tokens issued",
		},
	)

	RedemptionConsumesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freshwallet_redemption_consumes_total",
			Help: "Redemption consume attempts by outcome",
		},
		[]string{"outcome"},
	)

	WalletAdjustmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "freshwallet_wallet_adjustments_total",
			Help: "Total manual wallet adjustments",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freshwallet_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "freshwallet_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordPointsEarned(amount int64) {
	PointsEarnedTotal.Add(float64(amount))
}

func RecordDuplicateEarning() {
	DuplicateEarningsTotal.Inc()
}

func RecordRedemptionIssued() {
	RedemptionsIssuedTotal.Inc()
}

// RecordRedemptionConsume tracks consume attempts; outcome is one of
// success, not_found, already_used, expired, invalid_payload.
func RecordRedemptionConsume(outcome string) {
	RedemptionConsumesTotal.WithLabelValues(outcome).Inc()
}

func RecordAdjustment() {
	WalletAdjustmentsTotal.Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
