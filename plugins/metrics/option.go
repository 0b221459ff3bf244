package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/historystate/pkg/historystate"
)

// WithMetrics returns a historystate Option that records history metrics in
// reg.
//
// Usage:
//
//	hs, err := historystate.New(ctx, cfg,
//	    historystate.WithBrowser(browser),
//	    metrics.WithMetrics(prometheus.NewRegistry()),
//	)
func WithMetrics(reg prometheus.Registerer) historystate.Option {
	return historystate.WithEventHandler(New(reg))
}
