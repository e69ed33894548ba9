// Package metrics exposes operation counters of the storage node.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "stornet_node"

const objectSubsystem = "object"

// NodeMetrics groups prometheus collectors of the storage node.
type NodeMetrics struct {
	objectServiceMetrics

	epoch prometheus.Gauge
}

// NewNodeMetrics creates and registers node collectors.
func NewNodeMetrics() *NodeMetrics {
	objectService := newObjectServiceMetrics()
	objectService.register()

	epoch := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "epoch",
		Help:      "Current epoch as seen by the storage node.",
	})
	prometheus.MustRegister(epoch)

	return &NodeMetrics{
		objectServiceMetrics: objectService,
		epoch:                epoch,
	}
}

// SetEpoch updates epoch metric.
func (m *NodeMetrics) SetEpoch(epoch uint64) {
	m.epoch.Set(float64(epoch))
}

type objectServiceMetrics struct {
	putCounter    prometheus.Counter
	deleteCounter prometheus.Counter
	headCounter   prometheus.Counter

	scanDuration prometheus.Histogram
}

func newObjectServiceMetrics() objectServiceMetrics {
	newCounter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: objectSubsystem,
			Name:      name,
			Help:      help,
		})
	}

	return objectServiceMetrics{
		putCounter:    newCounter("put_req_count", "Number of PUT requests executed."),
		deleteCounter: newCounter("delete_req_count", "Number of DELETE requests executed."),
		headCounter:   newCounter("head_req_count", "Number of HEAD requests executed."),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: objectSubsystem,
			Name:      "copy_scan_duration_seconds",
			Help:      "Wall-clock duration of copy verification scans.",
		}),
	}
}

func (m objectServiceMetrics) register() {
	prometheus.MustRegister(m.putCounter)
	prometheus.MustRegister(m.deleteCounter)
	prometheus.MustRegister(m.headCounter)
	prometheus.MustRegister(m.scanDuration)
}

// IncPutCounter increments the PUT request counter.
func (m objectServiceMetrics) IncPutCounter() {
	m.putCounter.Inc()
}

// IncDeleteCounter increments the DELETE request counter.
func (m objectServiceMetrics) IncDeleteCounter() {
	m.deleteCounter.Inc()
}

// IncHeadCounter increments the HEAD request counter.
func (m objectServiceMetrics) IncHeadCounter() {
	m.headCounter.Inc()
}

// ObserveScanDuration records the duration of a finished copy
// verification scan.
func (m objectServiceMetrics) ObserveScanDuration(seconds float64) {
	m.scanDuration.Observe(seconds)
}
