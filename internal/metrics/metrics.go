package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coworkhub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coworkhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CheckoutOrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coworkhub_checkout_orders_total",
			Help: "Payment orders requested from the provider",
		},
		[]string{"result"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coworkhub_bookings_total",
			Help: "Bookings persisted from payment callbacks",
		},
		[]string{"reservation_type", "result"},
	)

	PaymentCallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coworkhub_payment_callbacks_total",
			Help: "Payment provider callbacks by outcome",
		},
		[]string{"outcome"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coworkhub_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coworkhub_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	PaymentEventsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coworkhub_payment_events_pruned_total",
			Help: "Payment events removed by the retention job",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordCheckoutOrder(result string) {
	CheckoutOrdersTotal.WithLabelValues(result).Inc()
}

func RecordBooking(reservationType, result string) {
	BookingsTotal.WithLabelValues(reservationType, result).Inc()
}

func RecordPaymentCallback(outcome string) {
	PaymentCallbacksTotal.WithLabelValues(outcome).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func SetEmailQueueLength(n int64) {
	EmailQueueLength.Set(float64(n))
}

func RecordPaymentEventsPruned(n int64) {
	PaymentEventsPrunedTotal.Add(float64(n))
}
