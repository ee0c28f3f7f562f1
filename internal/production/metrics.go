package production

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/comalice/statenode/internal/core"
)

// MetricsObserver exports resolver telemetry as Prometheus counters.
// It implements core.Observer.
type MetricsObserver struct {
	resolutions *prometheus.CounterVec
	views       *prometheus.CounterVec
}

// NewMetricsObserver creates the collectors and registers them with reg.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	o := &MetricsObserver{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statenode_resolutions_total",
				Help: "Total number of transition resolutions by outcome",
			},
			[]string{"node_id", "outcome"},
		),
		views: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statenode_view_computations_total",
				Help: "Total number of memoized view computations",
			},
			[]string{"view"},
		),
	}
	for _, c := range []prometheus.Collector{o.resolutions, o.views} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ViewComputed implements core.Observer.
func (o *MetricsObserver) ViewComputed(view, _ string) {
	o.views.WithLabelValues(view).Inc()
}

// Resolved implements core.Observer.
func (o *MetricsObserver) Resolved(nodeID, _ string, outcome core.Outcome) {
	o.resolutions.WithLabelValues(nodeID, string(outcome)).Inc()
}
