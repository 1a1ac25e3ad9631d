package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sentinel"

// Label values for result-partitioned counters.
const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Metrics holds the agent's Prometheus collectors.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	mqttConnected    prometheus.Gauge
	connectAttempts  *prometheus.CounterVec
	publishes        *prometheus.CounterVec
	commandsReceived prometheus.Counter
	deliveriesDone   prometheus.Counter
	reportsSkipped   *prometheus.CounterVec
	sampleFailures   *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		mqttConnected: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mqtt_connected",
			Help:      "MQTT session state (1 is connected)",
		}),
		connectAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mqtt_connect_attempts_total",
			Help:      "Number of MQTT connect attempts by result",
		}, []string{"result"}),
		publishes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mqtt_publishes_total",
			Help:      "Number of MQTT publishes handed to the broker by result",
		}, []string{"result"}),
		commandsReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mqtt_commands_received_total",
			Help:      "Number of messages received on subscribed topics",
		}),
		deliveriesDone: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mqtt_deliveries_completed_total",
			Help:      "Number of QoS 1 publishes acknowledged by the broker",
		}),
		reportsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_skipped_total",
			Help:      "Number of reporting cycles skipped while disconnected",
		}, []string{"report"}),
		sampleFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sample_failures_total",
			Help:      "Number of reporting cycles with at least one failed sensor read",
		}, []string{"report"}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func result(err error) string {
	if err != nil {
		return resultFailure
	}
	return resultSuccess
}

// ConnectionUp records the MQTT session state.
func (m *Metrics) ConnectionUp(up bool) {
	if up {
		m.mqttConnected.Set(1)
		return
	}
	m.mqttConnected.Set(0)
}

// ConnectAttempt counts one connect attempt.
func (m *Metrics) ConnectAttempt(err error) {
	m.connectAttempts.WithLabelValues(result(err)).Inc()
}

// Published counts one publish that reached the transport.
func (m *Metrics) Published(err error) {
	m.publishes.WithLabelValues(result(err)).Inc()
}

// CommandReceived counts one inbound message.
func (m *Metrics) CommandReceived() {
	m.commandsReceived.Inc()
}

// DeliveryComplete counts one broker acknowledgement.
func (m *Metrics) DeliveryComplete() {
	m.deliveriesDone.Inc()
}

// ReportSkipped counts one skipped reporting cycle.
func (m *Metrics) ReportSkipped(report string) {
	m.reportsSkipped.WithLabelValues(report).Inc()
}

// SampleFailed counts one cycle with a failed sensor read.
func (m *Metrics) SampleFailed(report string) {
	m.sampleFailures.WithLabelValues(report).Inc()
}
