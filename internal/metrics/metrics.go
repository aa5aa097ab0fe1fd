// Package metrics exposes Prometheus counters fed from the event bus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taicc-readiness/utilities"
)

// Event names published by the assessment service.
const (
	EventSessionStarted   = "session_started"
	EventTransition       = "session_transition"
	EventPaymentPolled    = "payment_polled"
	EventReportGenerated  = "report_generated"
	EventDeliveryFinished = "delivery_finished"
)

type TransitionEvent struct {
	SessionID string
	From      string
	To        string
}

// PaymentPollEvent carries "captured", "not_captured", "cancelled" or "waived".
type PaymentPollEvent struct {
	Result   string
	Attempts int
}

// ReportEvent carries "ok" or "error".
type ReportEvent struct {
	Result string
}

type DeliveryEvent struct {
	Channel string
	Status  string
}

// Recorder owns a private registry so tests can build as many as they like.
type Recorder struct {
	registry        *prometheus.Registry
	sessionsStarted prometheus.Counter
	transitions     *prometheus.CounterVec
	paymentPolls    *prometheus.CounterVec
	reports         *prometheus.CounterVec
	deliveries      *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "taicc",
			Name:      "sessions_started_total",
			Help:      "Sessions created at login.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taicc",
			Name:      "session_transitions_total",
			Help:      "Session state transitions.",
		}, []string{"from", "to"}),
		paymentPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taicc",
			Name:      "payment_polls_total",
			Help:      "Payment capture waits by result.",
		}, []string{"result"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taicc",
			Name:      "reports_generated_total",
			Help:      "Report compilations by result.",
		}, []string{"result"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taicc",
			Name:      "deliveries_total",
			Help:      "Delivery outcomes by channel and status.",
		}, []string{"channel", "status"}),
	}
	r.registry.MustRegister(
		r.sessionsStarted, r.transitions, r.paymentPolls, r.reports, r.deliveries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Subscribe wires the recorder to bus.
func (r *Recorder) Subscribe(bus *utilities.EventBus) {
	bus.Subscribe(EventSessionStarted, func(interface{}) {
		r.sessionsStarted.Inc()
	})
	bus.Subscribe(EventTransition, func(data interface{}) {
		if ev, ok := data.(TransitionEvent); ok {
			r.transitions.WithLabelValues(ev.From, ev.To).Inc()
		}
	})
	bus.Subscribe(EventPaymentPolled, func(data interface{}) {
		if ev, ok := data.(PaymentPollEvent); ok {
			r.paymentPolls.WithLabelValues(ev.Result).Inc()
		}
	})
	bus.Subscribe(EventReportGenerated, func(data interface{}) {
		if ev, ok := data.(ReportEvent); ok {
			r.reports.WithLabelValues(ev.Result).Inc()
		}
	})
	bus.Subscribe(EventDeliveryFinished, func(data interface{}) {
		if ev, ok := data.(DeliveryEvent); ok {
			r.deliveries.WithLabelValues(ev.Channel, ev.Status).Inc()
		}
	})
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
