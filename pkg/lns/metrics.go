package lns

import "github.com/prometheus/client_golang/prometheus"

// Metrics is optional prometheus instrumentation for a refinement run. A nil
// *Metrics is a no-op, so the engine never needs to branch on whether
// observability is wired.
type Metrics struct {
	currentDrivers prometheus.Gauge
	bestDrivers    prometheus.Gauge
	moves          *prometheus.CounterVec
}

// NewMetrics registers the engine's gauges and counters with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		currentDrivers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rosterizer",
			Subsystem: "lns",
			Name:      "current_drivers",
			Help:      "Driver count of the current (accepted) solution.",
		}),
		bestDrivers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rosterizer",
			Subsystem: "lns",
			Name:      "best_drivers",
			Help:      "Driver count of the best solution found so far.",
		}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rosterizer",
			Subsystem: "lns",
			Name:      "moves_total",
			Help:      "Destroy-and-repair attempts by operator and outcome.",
		}, []string{"operator", "outcome"}),
	}
	for _, c := range []prometheus.Collector{m.currentDrivers, m.bestDrivers, m.moves} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeDrivers(current, best int) {
	if m == nil {
		return
	}
	m.currentDrivers.Set(float64(current))
	m.bestDrivers.Set(float64(best))
}

func (m *Metrics) countMove(operator, outcome string) {
	if m == nil {
		return
	}
	m.moves.WithLabelValues(operator, outcome).Inc()
}
