// Prometheus metrics for the trading data-access layer, served by the API
// server at /metrics.

package trading

import "github.com/prometheus/client_golang/prometheus"

var (
	mtxLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_trade_loads_total",
			Help: "Trade list reloads by result (ok|error|stale_discarded)",
		},
		[]string{"result"},
	)

	mtxOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_backend_ops_total",
			Help: "Mutating backend operations by result",
		},
		[]string{"op", "result"}, // op: execute|close|sync
	)

	mtxOpenTrades = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_open_trades",
			Help: "Open trades in the current snapshot",
		},
	)

	mtxListenerPanics = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_listener_panics_total",
			Help: "Subscriber callbacks that panicked during notification",
		},
	)
)

func init() {
	prometheus.MustRegister(mtxLoads, mtxOps, mtxOpenTrades, mtxListenerPanics)
}
