package predict

import "gonum.org/v1/gonum/floats"

// MinMaxScaler is a fitted min-max normalizer bound to an ordered list of
// base feature names. It mirrors the transform used at training time:
// scaled = (x - min) / (max - min), with a degenerate range treated as 1 so
// constant features scale to zero instead of dividing by zero.
type MinMaxScaler struct {
	FeatureNames []string  `json:"feature_names"`
	DataMin      []float64 `json:"data_min"`
	DataMax      []float64 `json:"data_max"`
}

func (s *MinMaxScaler) validate(pollutant string) error {
	if len(s.DataMin) != len(s.FeatureNames) || len(s.DataMax) != len(s.FeatureNames) {
		return &artifactError{pollutant, "scaler bounds do not match feature_names length"}
	}
	return nil
}

// Transform scales one row of base feature values, ordered like FeatureNames.
func (s *MinMaxScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	copy(out, row)
	floats.Sub(out, s.DataMin)
	for i := range out {
		if r := s.DataMax[i] - s.DataMin[i]; r != 0 {
			out[i] /= r
		}
	}
	return out
}
