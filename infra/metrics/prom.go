package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "aqcast/core/metrics"
)

// PromSink records prediction and upstream-fetch events in Prometheus
// metrics.
type PromSink struct {
	predictions *prometheus.CounterVec
	duration    prometheus.Histogram
	aqi         prometheus.Gauge
	fetches     *prometheus.CounterVec
}

// NewPromSink registers metrics on the default Prometheus registerer.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	predictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aqcast_predictions_total",
		Help: "Total number of prediction runs",
	}, []string{"aqi_defined"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aqcast_prediction_duration_seconds",
		Help:    "Time spent running the prediction pipeline",
		Buckets: prometheus.DefBuckets,
	})
	aqi := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aqcast_predicted_aqi",
		Help: "Most recently predicted overall AQI",
	})
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aqcast_upstream_fetches_total",
		Help: "Total number of upstream API calls",
	}, []string{"source", "outcome"})

	if err := reg.Register(predictions); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			predictions = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(aqi); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			aqi = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fetches); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fetches = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{predictions: predictions, duration: duration, aqi: aqi, fetches: fetches}, nil
}

// RecordPrediction increments the run counter and observes the duration.
func (s *PromSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	s.predictions.WithLabelValues(strconv.FormatBool(ev.AQI != nil)).Inc()
	s.duration.Observe(ev.Duration.Seconds())
	if ev.AQI != nil {
		s.aqi.Set(float64(*ev.AQI))
	}
	return nil
}

// RecordFetch increments the upstream fetch counter.
func (s *PromSink) RecordFetch(ev coremetrics.FetchEvent) error {
	s.fetches.WithLabelValues(ev.Source, ev.Outcome).Inc()
	return nil
}
