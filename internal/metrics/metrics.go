package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentzy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rentzy_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentzy_bookings_total",
			Help: "Booking status transitions by resulting status",
		},
		[]string{"status"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rentzy_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	BookingsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rentzy_bookings_expired_total",
			Help: "Pending bookings expired after the reservation hold window",
		},
	)

	RefundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rentzy_refunds_vnd_total",
			Help: "Total refund volume credited to wallets, in VND",
		},
	)

	WalletTopUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rentzy_wallet_topups_total",
			Help: "Total number of wallet top-ups",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentzy_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rentzy_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(status string) {
	BookingsTotal.WithLabelValues(status).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordBookingExpired() {
	BookingsExpiredTotal.Inc()
}

func RecordRefund(amount int64) {
	if amount > 0 {
		RefundsTotal.Add(float64(amount))
	}
}

func RecordWalletTopUp() {
	WalletTopUpsTotal.Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
