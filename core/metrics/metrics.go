// Package metrics defines the observability events emitted by the service
// and the sink interface implementations record them through.
package metrics

import "time"

// PredictionEvent captures one completed prediction run.
type PredictionEvent struct {
	RequestID      string
	Concentrations map[string]float64
	AQI            *int
	Duration       time.Duration
	Time           time.Time
}

// FetchEvent captures one upstream API call.
type FetchEvent struct {
	Source   string // "openaq", "meteostat" or "open-meteo"
	Outcome  string // "ok" or "error"
	Duration time.Duration
	Time     time.Time
}

// Sink records service events for observability purposes.
type Sink interface {
	RecordPrediction(ev PredictionEvent) error
	RecordFetch(ev FetchEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordPrediction(PredictionEvent) error { return nil }
func (NopSink) RecordFetch(FetchEvent) error           { return nil }
