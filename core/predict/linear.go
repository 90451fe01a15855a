package predict

import "gonum.org/v1/gonum/floats"

// LinearModel is a trained regression model over a fixed-length feature
// vector. Coefficients are aligned, column for column, with the pollutant's
// feature_cols from the artifact metadata.
type LinearModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Predict evaluates the model on one feature vector.
func (m *LinearModel) Predict(x []float64) float64 {
	return m.Intercept + floats.Dot(m.Coefficients, x)
}
