package launcher

import "github.com/prometheus/client_golang/prometheus"

var (
	launchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchpad",
			Subsystem: "launcher",
			Name:      "launches_total",
			Help:      "Total launch attempts by outcome",
		},
		[]string{"outcome"},
	)

	launchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "launchpad",
			Subsystem: "launcher",
			Name:      "launch_duration_seconds",
			Help:      "Duration of the two-phase launch in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(launchesTotal, launchDuration)
}
