// Package predict turns one previous-hour raw observation into next-hour
// concentration estimates. The feature vector handed to each pollutant's
// model must reproduce, column for column and in order, the schema used at
// training time; the builder therefore fails hard on any raw field it cannot
// resolve instead of substituting a default.
package predict

import (
	"fmt"
	"math"

	"aqcast/core/aqi"
	"aqcast/core/model"
)

// Engine runs inference over a loaded artifact bundle. It is stateless apart
// from the read-only bundle and safe for concurrent use.
type Engine struct {
	bundle       *Bundle
	allowPartial bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithPartialFeatures makes the builder substitute NaN for expected feature
// columns it cannot populate instead of failing. The model then sees an
// undefined value, so this is an explicit opt-in for callers that prefer a
// degraded prediction over none.
func WithPartialFeatures() Option {
	return func(e *Engine) { e.allowPartial = true }
}

// NewEngine creates an Engine over a loaded bundle.
func NewEngine(bundle *Bundle, opts ...Option) *Engine {
	e := &Engine{bundle: bundle}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildFeatureRow assembles the exact feature vector the pollutant's model
// expects, ordered like the metadata's feature_cols. raw holds previous-hour
// values keyed by field name, in physical units.
func (e *Engine) BuildFeatureRow(pollutant string, raw map[string]float64) ([]float64, error) {
	plan, ok := e.bundle.plans[pollutant]
	if !ok {
		return nil, fmt.Errorf("no model for pollutant %q", pollutant)
	}
	scaler := e.bundle.scalers[pollutant]

	// Scale the base features this pollutant's scaler was fitted on. Every
	// base is required even when only a subset appears in feature_cols: the
	// scaler transform is defined over the full fitted row.
	base := make([]float64, len(scaler.FeatureNames))
	for i, name := range scaler.FeatureNames {
		v, err := baseValue(name, raw)
		if err != nil {
			return nil, err
		}
		base[i] = v
	}
	scaled := make(map[string]float64, len(base))
	for i, v := range scaler.Transform(base) {
		scaled[scaler.FeatureNames[i]+suffixScaledLag1] = v
	}

	row := make([]float64, len(plan))
	for i, spec := range plan {
		switch spec.Kind {
		case scaledLag:
			v, ok := scaled[spec.Column]
			if !ok {
				if !e.allowPartial {
					return nil, &MissingInputError{Field: spec.Field, Column: spec.Column}
				}
				v = math.NaN()
			}
			row[i] = v
		case logLag:
			v, ok := raw[spec.Field]
			if !ok {
				return nil, &MissingInputError{Field: spec.Field, Column: spec.Column}
			}
			row[i] = logIfNeeded(spec.Field, v)
		case rawLag:
			v, ok := raw[spec.Field]
			if !ok {
				return nil, &MissingInputError{Field: spec.Field, Column: spec.Column}
			}
			row[i] = v
		}
	}
	return row, nil
}

// PredictPollutant builds the feature row for one pollutant, runs its model
// and inverts the training-time target transform, returning the estimate in
// physical units.
func (e *Engine) PredictPollutant(pollutant string, raw map[string]float64) (float64, error) {
	row, err := e.BuildFeatureRow(pollutant, raw)
	if err != nil {
		return 0, err
	}
	yhat := e.bundle.models[pollutant].Predict(row)
	if e.bundle.meta[pollutant].IsLogTransformed {
		yhat = invertLog(pollutant, yhat)
	}
	return yhat, nil
}

// Predict runs every pollutant model over the raw record and attaches the
// dominant-pollutant AQI. The result always carries one concentration per
// pollutant in the bundle; AQI is nil when undefined.
func (e *Engine) Predict(raw map[string]float64) (model.Prediction, error) {
	out := model.Prediction{Concentrations: make(map[string]float64, len(e.bundle.meta))}
	for _, pollutant := range e.bundle.Pollutants() {
		v, err := e.PredictPollutant(pollutant, raw)
		if err != nil {
			return model.Prediction{}, fmt.Errorf("predict %s: %w", pollutant, err)
		}
		out.Concentrations[pollutant] = v
	}
	if v, ok := aqi.Overall(out.Concentrations); ok {
		out.AQI = &v
	}
	return out, nil
}
