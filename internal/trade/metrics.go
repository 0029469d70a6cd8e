// Prometheus counters for the normalization boundary. Unknown strategy/status
// tags are silently defaulted (see ParseType/ParseStatus); these series make
// that defaulting observable on dashboards.

package trade

import "github.com/prometheus/client_golang/prometheus"

var mtxUnknownTags = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dashboard_unknown_tags_total",
		Help: "Backend values that fell back to a default during normalization",
	},
	[]string{"field"}, // type|status
)

func init() {
	prometheus.MustRegister(mtxUnknownTags)
}

// IncUnknownTag records one defaulted field value.
func IncUnknownTag(field string) { mtxUnknownTags.WithLabelValues(field).Inc() }
