package renewal

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts renewal tick outcomes and proxy reloads. A nil *Metrics is
// valid and records nothing, so tests can run without a registry.
type Metrics struct {
	ticks   *prometheus.CounterVec
	reloads prometheus.Counter
}

// NewMetrics registers the daemon's collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cd2",
			Subsystem: "certwatch",
			Name:      "renewal_ticks_total",
			Help:      "Count of renewal attempts by outcome",
		}, []string{"outcome"}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cd2",
			Subsystem: "certwatch",
			Name:      "proxy_reloads_total",
			Help:      "Number of successful proxy reload signals",
		}),
	}
	if reg != nil {
		for _, collector := range []prometheus.Collector{m.ticks, m.reloads} {
			if err := reg.Register(collector); err != nil {
				if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
					switch existing := already.ExistingCollector.(type) {
					case *prometheus.CounterVec:
						m.ticks = existing
					case prometheus.Counter:
						m.reloads = existing
					}
				}
			}
		}
	}
	return m
}

func (m *Metrics) recordTick(outcome string) {
	if m == nil {
		return
	}
	m.ticks.With(prometheus.Labels{"outcome": outcome}).Inc()
}

func (m *Metrics) recordReload() {
	if m == nil {
		return
	}
	m.reloads.Inc()
}
