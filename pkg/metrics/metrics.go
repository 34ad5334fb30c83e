package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	MessagesProcessed   *prometheus.CounterVec
	BookingsCreated     prometheus.Counter
	AssistantFallbacks  prometheus.Counter
}

// New регистрирует и возвращает метрики сервиса
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "path"}),

		MessagesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "conversation_messages_total",
			Help:        "Total number of processed conversation messages by intent",
			ConstLabels: constLabels,
		}, []string{"intent"}),

		BookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Total number of appointments created",
			ConstLabels: constLabels,
		}),

		AssistantFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "assistant_fallbacks_total",
			Help:        "Total number of assistant failures that fell back to rule-based replies",
			ConstLabels: constLabels,
		}),
	}
}

// IncMessageProcessed увеличивает счетчик обработанных сообщений для намерения
func (m *Metrics) IncMessageProcessed(intent string) {
	m.MessagesProcessed.WithLabelValues(intent).Inc()
}

// IncBookingCreated увеличивает счетчик созданных записей
func (m *Metrics) IncBookingCreated() {
	m.BookingsCreated.Inc()
}

// IncAssistantFallback увеличивает счетчик сбоев ассистента
func (m *Metrics) IncAssistantFallback() {
	m.AssistantFallbacks.Inc()
}
