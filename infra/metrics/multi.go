package metrics

import (
	"errors"

	coremetrics "aqcast/core/metrics"
)

// MultiSink fans events out to several sinks, collecting errors.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink creates a sink that forwards events to all given sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordPrediction(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordFetch(ev coremetrics.FetchEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordFetch(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
