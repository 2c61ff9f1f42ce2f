package amgo

import "github.com/prometheus/client_golang/prometheus"

// Collector exports a Context's registry sizes as Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(amgo.NewCollector(amgo.Default()))
type Collector struct {
	ctx *Context

	stored     *prometheus.Desc
	registered *prometheus.Desc
	submitted  *prometheus.Desc
	booted     *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector reading from c.
func NewCollector(c *Context) *Collector {
	return &Collector{
		ctx: c,
		stored: prometheus.NewDesc(
			"amgo_handles_stored",
			"Number of objects held by the handle registry.",
			nil, nil,
		),
		registered: prometheus.NewDesc(
			"amgo_tasks_registered",
			"Number of task units held by the task registries.",
			[]string{"kind"}, nil,
		),
		submitted: prometheus.NewDesc(
			"amgo_tasks_submitted_total",
			"Number of task units handed to a pool.",
			[]string{"kind"}, nil,
		),
		booted: prometheus.NewDesc(
			"amgo_booted",
			"1 if the context is booted, 0 otherwise.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (m *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.stored
	ch <- m.registered
	ch <- m.submitted
	ch <- m.booted
}

// Collect implements prometheus.Collector.
func (m *Collector) Collect(ch chan<- prometheus.Metric) {
	c := m.ctx
	ch <- prometheus.MustNewConstMetric(m.stored, prometheus.GaugeValue, float64(c.StoredCount()))
	ch <- prometheus.MustNewConstMetric(m.registered, prometheus.GaugeValue, float64(c.TaskCount()), "plain")
	ch <- prometheus.MustNewConstMetric(m.registered, prometheus.GaugeValue, float64(c.AwaitableTaskCount()), "awaitable")
	ch <- prometheus.MustNewConstMetric(m.submitted, prometheus.CounterValue, float64(c.submitted.Load()), "plain")
	ch <- prometheus.MustNewConstMetric(m.submitted, prometheus.CounterValue, float64(c.submittedAwaitable.Load()), "awaitable")

	var booted float64
	if c.IsBooted() {
		booted = 1
	}
	ch <- prometheus.MustNewConstMetric(m.booted, prometheus.GaugeValue, booted)
}
