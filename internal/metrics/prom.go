package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PromMetrics struct {
	armed         *prometheus.CounterVec
	armFailed     *prometheus.CounterVec
	disarmed      prometheus.Counter
	disarmFailed  prometheus.Counter
	fired         *prometheus.CounterVec
	dropped       prometheus.Counter
	storeWriteErr prometheus.Counter
}

func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	m := &PromMetrics{
		armed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "remindd_alarms_armed_total",
			Help: "Number of alarms armed in the dispatcher",
		}, []string{"kind"}),
		armFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "remindd_alarms_arm_failed_total",
			Help: "Number of alarms that could not be armed",
		}, []string{"kind"}),
		disarmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "remindd_alarms_disarmed_total",
			Help: "Number of alarms disarmed",
		}),
		disarmFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "remindd_alarms_disarm_failed_total",
			Help: "Number of disarm requests that failed",
		}),
		fired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "remindd_alarms_fired_total",
			Help: "Number of alarms delivered",
		}, []string{"kind"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "remindd_alarms_dropped_total",
			Help: "Number of due alarms dropped because the consumer was slow",
		}),
		storeWriteErr: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "remindd_store_write_failed_total",
			Help: "Number of failed task collection writes",
		}),
	}
	reg.MustRegister(m.armed, m.armFailed, m.disarmed, m.disarmFailed, m.fired, m.dropped, m.storeWriteErr)
	return m
}

func (m *PromMetrics) AlarmArmed(kind string) {
	m.armed.WithLabelValues(kind).Inc()
}
func (m *PromMetrics) AlarmArmFailed(kind string) {
	m.armFailed.WithLabelValues(kind).Inc()
}
func (m *PromMetrics) AlarmDisarmed() {
	m.disarmed.Inc()
}
func (m *PromMetrics) AlarmDisarmFailed() {
	m.disarmFailed.Inc()
}
func (m *PromMetrics) AlarmFired(kind string) {
	m.fired.WithLabelValues(kind).Inc()
}
func (m *PromMetrics) AlarmDropped() {
	m.dropped.Inc()
}
func (m *PromMetrics) StoreWriteFailed() {
	m.storeWriteErr.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
