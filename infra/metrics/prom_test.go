package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "aqcast/core/metrics"
)

func TestPromSinkRecordsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	aqi := 64
	require.NoError(t, sink.RecordPrediction(coremetrics.PredictionEvent{
		RequestID:      "req-1",
		Concentrations: map[string]float64{"pm25": 18.5},
		AQI:            &aqi,
		Duration:       25 * time.Millisecond,
		Time:           time.Now(),
	}))
	require.NoError(t, sink.RecordPrediction(coremetrics.PredictionEvent{
		RequestID: "req-2",
		Duration:  10 * time.Millisecond,
		Time:      time.Now(),
	}))
	require.NoError(t, sink.RecordFetch(coremetrics.FetchEvent{
		Source: "openaq", Outcome: "ok", Duration: time.Millisecond, Time: time.Now(),
	}))

	ps := sink.(*PromSink)
	assert.InDelta(t, 1, testutil.ToFloat64(ps.predictions.WithLabelValues("true")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(ps.predictions.WithLabelValues("false")), 1e-9)
	assert.InDelta(t, 64, testutil.ToFloat64(ps.aqi), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(ps.fetches.WithLabelValues("openaq", "ok")), 1e-9)
}

func TestPromSinkRegistersIdempotently(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	// Both sinks share the collectors already registered by the first.
	require.NoError(t, second.RecordFetch(coremetrics.FetchEvent{Source: "meteostat", Outcome: "error"}))
	assert.InDelta(t, 1,
		testutil.ToFloat64(first.(*PromSink).fetches.WithLabelValues("meteostat", "error")), 1e-9)
}
