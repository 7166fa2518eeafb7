package metrics

import "github.com/prometheus/client_golang/prometheus"

// SweepMetrics counts carts moved by the abandonment sweep.
type SweepMetrics struct {
	marked prometheus.Counter
	purged prometheus.Counter
}

// NewSweepMetrics registers the sweep counters on the provided registerer.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	if reg == nil {
		return &SweepMetrics{}
	}
	marked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_sweep_marked_total",
		Help: "Carts transitioned from active to abandoned by the sweep.",
	})
	purged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_sweep_purged_total",
		Help: "Abandoned carts deleted by the sweep.",
	})
	reg.MustRegister(marked, purged)
	return &SweepMetrics{marked: marked, purged: purged}
}

// AddMarked records carts marked abandoned in one sweep pass.
func (s *SweepMetrics) AddMarked(count int64) {
	if s == nil || s.marked == nil || count <= 0 {
		return
	}
	s.marked.Add(float64(count))
}

// AddPurged records carts purged in one sweep pass.
func (s *SweepMetrics) AddPurged(count int64) {
	if s == nil || s.purged == nil || count <= 0 {
		return
	}
	s.purged.Add(float64(count))
}
