package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/bookings", "200", 0.5)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/bookings", "200"))
	assert.Equal(t, float64(1), count)
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/auth/login", "200", 0.1)
	RecordHTTPRequest("POST", "/auth/login", "200", 0.2)
	RecordHTTPRequest("POST", "/auth/login", "401", 0.05)

	successCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/auth/login", "200"))
	failCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/auth/login", "401"))

	assert.Equal(t, float64(2), successCount)
	assert.Equal(t, float64(1), failCount)
}

func TestRecordBooking(t *testing.T) {
	BookingsTotal.Reset()

	RecordBooking("CONFIRMED")
	RecordBooking("CONFIRMED")
	RecordBooking("DEPOSIT_PAID")

	confirmed := testutil.ToFloat64(BookingsTotal.WithLabelValues("CONFIRMED"))
	depositPaid := testutil.ToFloat64(BookingsTotal.WithLabelValues("DEPOSIT_PAID"))

	assert.Equal(t, float64(2), confirmed)
	assert.Equal(t, float64(1), depositPaid)
}

func TestRecordBookingCancellation(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rentzy_booking_cancellations_total_test",
			Help: "Total number of booking cancellations",
		},
	)

	oldCounter := BookingCancellationsTotal
	BookingCancellationsTotal = testCounter
	defer func() { BookingCancellationsTotal = oldCounter }()

	RecordBookingCancellation()
	RecordBookingCancellation()

	count := testutil.ToFloat64(testCounter)
	assert.Equal(t, float64(2), count)
}

func TestRecordBookingExpired(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rentzy_bookings_expired_total_test",
			Help: "Pending bookings expired after the reservation hold window",
		},
	)

	oldCounter := BookingsExpiredTotal
	BookingsExpiredTotal = testCounter
	defer func() { BookingsExpiredTotal = oldCounter }()

	RecordBookingExpired()

	count := testutil.ToFloat64(testCounter)
	assert.Equal(t, float64(1), count)
}

func TestRecordRefund(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rentzy_refunds_vnd_total_test",
			Help: "Total refund volume credited to wallets, in VND",
		},
	)

	oldCounter := RefundsTotal
	RefundsTotal = testCounter
	defer func() { RefundsTotal = oldCounter }()

	RecordRefund(500000)
	RecordRefund(150000)
	RecordRefund(0)
	RecordRefund(-100)

	count := testutil.ToFloat64(testCounter)
	assert.Equal(t, float64(650000), count)
}

func TestRecordWalletTopUp(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rentzy_wallet_topups_total_test",
			Help: "Total number of wallet top-ups",
		},
	)

	oldCounter := WalletTopUpsTotal
	WalletTopUpsTotal = testCounter
	defer func() { WalletTopUpsTotal = oldCounter }()

	RecordWalletTopUp()
	RecordWalletTopUp()
	RecordWalletTopUp()

	count := testutil.ToFloat64(testCounter)
	assert.Equal(t, float64(3), count)
}

func TestRecordEmail(t *testing.T) {
	EmailsSentTotal.Reset()

	RecordEmail("smtp", "sent")
	RecordEmail("smtp", "failed")
	RecordEmail("smtp", "sent")

	sent := testutil.ToFloat64(EmailsSentTotal.WithLabelValues("smtp", "sent"))
	failed := testutil.ToFloat64(EmailsSentTotal.WithLabelValues("smtp", "failed"))

	assert.Equal(t, float64(2), sent)
	assert.Equal(t, float64(1), failed)
}

func TestEmailQueueLength(t *testing.T) {
	EmailQueueLength.Set(10)
	assert.Equal(t, float64(10), testutil.ToFloat64(EmailQueueLength))

	EmailQueueLength.Set(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(EmailQueueLength))
}

func TestMetricsIntegration(t *testing.T) {
	HTTPRequestsTotal.Reset()
	BookingsTotal.Reset()
	EmailsSentTotal.Reset()

	RecordHTTPRequest("POST", "/bookings", "201", 0.25)
	RecordBooking("PENDING")
	RecordEmail("smtp", "sent")

	httpCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/bookings", "201"))
	bookingCount := testutil.ToFloat64(BookingsTotal.WithLabelValues("PENDING"))
	emailCount := testutil.ToFloat64(EmailsSentTotal.WithLabelValues("smtp", "sent"))

	assert.Equal(t, float64(1), httpCount)
	assert.Equal(t, float64(1), bookingCount)
	assert.Equal(t, float64(1), emailCount)
}
