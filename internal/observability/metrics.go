// Package observability holds the Prometheus collectors of the API process.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityRecordedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitness",
		Subsystem: "store",
		Name:      "last_activity_recorded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity appended to the feed log.",
	})
	activitiesRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "feed",
		Name:      "activities_recorded_total",
		Help:      "Number of activities appended, by activity type.",
	}, []string{"type"})
	achievementsAwarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "rules",
		Name:      "achievements_awarded_total",
		Help:      "Number of achievements awarded, by title.",
	}, []string{"title"})
	sideEffectFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "rules",
		Name:      "side_effect_failures_total",
		Help:      "Number of activity or achievement side effects rolled back after a failure.",
	}, []string{"effect"})
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fitness",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of HTTP requests by route pattern and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		activityRecordedGauge,
		activitiesRecorded,
		achievementsAwarded,
		sideEffectFailures,
		httpRequestDuration,
	)
}

// RecordActivity counts an appended activity and advances the watermark gauge.
func RecordActivity(activityType string, ts time.Time) {
	activitiesRecorded.WithLabelValues(activityType).Inc()
	if ts.IsZero() {
		return
	}
	activityRecordedGauge.Set(float64(ts.Unix()))
}

// RecordAchievement counts an awarded achievement.
func RecordAchievement(title string) {
	achievementsAwarded.WithLabelValues(title).Inc()
}

// RecordSideEffectFailure counts a rolled back side effect.
func RecordSideEffectFailure(effect string) {
	sideEffectFailures.WithLabelValues(effect).Inc()
}

// ObserveHTTPRequest records the latency of a served request.
func ObserveHTTPRequest(method, route, status string, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}
