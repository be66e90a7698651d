package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecordActivityAdvancesGauge(t *testing.T) {
	before := counterValue(t, activitiesRecorded.WithLabelValues("status_update"))

	ts := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	RecordActivity("status_update", ts)

	require.Equal(t, before+1, counterValue(t, activitiesRecorded.WithLabelValues("status_update")))

	var m dto.Metric
	require.NoError(t, activityRecordedGauge.Write(&m))
	require.Equal(t, float64(ts.Unix()), m.GetGauge().GetValue())
}

func TestRecordSideEffectFailure(t *testing.T) {
	before := counterValue(t, sideEffectFailures.WithLabelValues("rules"))
	RecordSideEffectFailure("rules")
	require.Equal(t, before+1, counterValue(t, sideEffectFailures.WithLabelValues("rules")))
}
