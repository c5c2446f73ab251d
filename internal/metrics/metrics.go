// Package metrics records Prometheus metrics for the polling engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Task kinds for the tasks counter.
const (
	TaskAdmin    = "admin"
	TaskCustomer = "customer"
)

// Recorder holds the engine's metric instruments.
type Recorder struct {
	cyclesTotal     prometheus.Counter
	cycleDuration   prometheus.Histogram
	tasksTotal      *prometheus.CounterVec
	fetchErrors     prometheus.Counter
	alertsTotal     *prometheus.CounterVec
	persistErrors   prometheus.Counter
	notifyErrors    prometheus.Counter
	lastCycleMoment prometheus.Gauge
}

// New registers the engine's metrics with the default registry.
func New() *Recorder {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the engine's metrics with the given registerer.
func NewWith(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		cyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_cycles_total",
			Help: "Total number of completed monitoring cycles",
		}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_cycle_duration_seconds",
			Help:    "Duration of one monitoring cycle in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		tasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_tasks_total",
			Help: "Total number of subscriber-symbol tasks processed",
		}, []string{"kind"}),
		fetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_fetch_errors_total",
			Help: "Total number of failed market data fetches",
		}),
		alertsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sentinel_alerts_total",
			Help: "Total number of alerts emitted",
		}, []string{"signal"}),
		persistErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_persist_errors_total",
			Help: "Total number of failed alert writes",
		}),
		notifyErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_notify_errors_total",
			Help: "Total number of failed push deliveries",
		}),
		lastCycleMoment: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sentinel_last_cycle_timestamp_seconds",
			Help: "Unix time of the last completed cycle",
		}),
	}
}

// CycleCompleted records one finished cycle and its duration.
func (r *Recorder) CycleCompleted(seconds float64, unixTime float64) {
	r.cyclesTotal.Inc()
	r.cycleDuration.Observe(seconds)
	r.lastCycleMoment.Set(unixTime)
}

// TaskProcessed records one finished subscriber-symbol task.
func (r *Recorder) TaskProcessed(kind string) {
	r.tasksTotal.WithLabelValues(kind).Inc()
}

// FetchError records one failed market data fetch.
func (r *Recorder) FetchError() { r.fetchErrors.Inc() }

// AlertEmitted records one persisted alert.
func (r *Recorder) AlertEmitted(signal string) {
	r.alertsTotal.WithLabelValues(signal).Inc()
}

// PersistError records one failed alert write.
func (r *Recorder) PersistError() { r.persistErrors.Inc() }

// NotifyError records one failed push delivery.
func (r *Recorder) NotifyError() { r.notifyErrors.Inc() }
