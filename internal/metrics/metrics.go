// Package metrics exposes the Prometheus collectors of the service. Every
// method is safe on a nil *Metrics so components can run without metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	paymentsRecorded    prometheus.Counter
	invoicesPaid        prometheus.Counter
	statusUpdateFailure prometheus.Counter
	outboxPublished     *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry, service string) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if service == "" {
		service = "inventory"
	}
	constLabels := prometheus.Labels{"service": service}

	m := &Metrics{
		gatherer: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "inventory_http_requests_total",
			Help:        "HTTP requests by method, route pattern and status.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "inventory_http_request_duration_seconds",
			Help:        "HTTP request latency by method and route pattern.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route"}),
		paymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "billing_payments_recorded_total",
			Help:        "Payments persisted against invoices.",
			ConstLabels: constLabels,
		}),
		invoicesPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "billing_invoices_paid_total",
			Help:        "Invoices transitioned to paid by payment reconciliation.",
			ConstLabels: constLabels,
		}),
		statusUpdateFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "billing_invoice_status_update_failures_total",
			Help:        "Paid transitions that failed after the payment was persisted.",
			ConstLabels: constLabels,
		}),
		outboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "billing_outbox_published_total",
			Help:        "Outbox events relayed to the broker.",
			ConstLabels: constLabels,
		}, []string{"result"}), // success | failed
	}
	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.paymentsRecorded,
		m.invoicesPaid,
		m.statusUpdateFailure,
		m.outboxPublished,
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request count and latency by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) PaymentRecorded() {
	if m != nil {
		m.paymentsRecorded.Inc()
	}
}

func (m *Metrics) InvoicePaid() {
	if m != nil {
		m.invoicesPaid.Inc()
	}
}

func (m *Metrics) StatusUpdateFailed() {
	if m != nil {
		m.statusUpdateFailure.Inc()
	}
}

func (m *Metrics) OutboxPublished(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failed"
	}
	m.outboxPublished.WithLabelValues(result).Inc()
}
