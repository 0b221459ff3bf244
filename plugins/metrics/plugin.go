// Package metrics exports history transitions as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bft-labs/historystate/pkg/historystate"
)

// Restore outcomes.
const (
	OutcomeNew       = "new"
	OutcomeReload    = "reload"
	OutcomeDiscarded = "discarded"
)

// Collector is a historystate.EventHandler recording transitions and
// restores.
type Collector struct {
	historystate.BaseEventHandler

	transitions *prometheus.CounterVec
	restores    *prometheus.CounterVec
	page        prometheus.Gauge
}

// New creates a Collector and registers its metrics with reg. A nil reg
// registers with the default registry.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "historystate_transitions_total",
			Help: "Total number of history transitions by action",
		}, []string{"action"}),

		restores: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "historystate_restores_total",
			Help: "Total number of history state initializations by outcome",
		}, []string{"outcome"}),

		page: factory.NewGauge(prometheus.GaugeOpts{
			Name: "historystate_page",
			Help: "Index of the active page",
		}),
	}
}

// OnTransition counts the transition and tracks the new page.
func (c *Collector) OnTransition(e historystate.TransitionEvent) {
	c.transitions.WithLabelValues(e.Action.String()).Inc()
	c.page.Set(float64(e.To))
}

// OnRestore counts the initialization. A backup that could not be used
// counts as discarded.
func (c *Collector) OnRestore(e historystate.RestoreEvent) {
	outcome := OutcomeNew
	switch {
	case e.Err != nil:
		outcome = OutcomeDiscarded
	case e.Action == historystate.ActionReload:
		outcome = OutcomeReload
	}
	c.restores.WithLabelValues(outcome).Inc()
}

var _ historystate.EventHandler = (*Collector)(nil)
