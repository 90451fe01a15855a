package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBundleMissingFile(t *testing.T) {
	_, err := LoadBundle(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read artifact")
}

func TestLoadBundleMalformedJSON(t *testing.T) {
	dir := writeBundle(t, "{not json", testModels, testScalers)
	_, err := LoadBundle(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse artifact")
}

func TestLoadBundleMissingModelEntry(t *testing.T) {
	models := `{
  "pm25": {"intercept": 0.1, "coefficients": [0.01, 0.2, 0.4]},
  "o3":   {"intercept": 0.0, "coefficients": [0.0, 1.0]}
}`
	_, err := LoadBundle(writeBundle(t, testMeta, models, testScalers))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model entry")
}

func TestLoadBundleCoefficientMismatch(t *testing.T) {
	models := `{
  "pm25": {"intercept": 0.1, "coefficients": [0.01]},
  "o3":   {"intercept": 0.0, "coefficients": [0.0, 1.0]},
  "co":   {"intercept": 1.0, "coefficients": [0.0, 2.0]}
}`
	_, err := LoadBundle(writeBundle(t, testMeta, models, testScalers))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coefficients")
}

func TestLoadBundleScalerBoundsMismatch(t *testing.T) {
	scalers := `{
  "pm25": {"feature_names": ["pm25", "temp"], "data_min": [0], "data_max": [10, 50]},
  "o3":   {"feature_names": ["o3"], "data_min": [0], "data_max": [1]},
  "co":   {"feature_names": ["co"], "data_min": [0], "data_max": [2]}
}`
	_, err := LoadBundle(writeBundle(t, testMeta, testModels, scalers))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scaler bounds")
}

func TestLoadBundleRejectsUnknownFeatureShape(t *testing.T) {
	meta := `{
  "o3": {"feature_cols": ["temp"], "is_log_transformed": false}
}`
	models := `{"o3": {"intercept": 0.0, "coefficients": [1.0]}}`
	scalers := `{"o3": {"feature_names": [], "data_min": [], "data_max": []}}`
	_, err := LoadBundle(writeBundle(t, meta, models, scalers))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recognized lag-1 form")
}

func TestBundlePollutantsSorted(t *testing.T) {
	b := loadTestBundle(t)
	assert.Equal(t, []string{"co", "o3", "pm25"}, b.Pollutants())
}

func TestBundleFeatureColumns(t *testing.T) {
	b := loadTestBundle(t)
	cols := b.FeatureColumns("pm25")
	assert.Equal(t, []string{"temp_lag1", "pm10_log_lag1", "pm25_scaled_lag1"}, cols)

	// Returned slice is a copy; mutating it must not touch the bundle.
	cols[0] = "mutated"
	assert.Equal(t, "temp_lag1", b.FeatureColumns("pm25")[0])

	assert.Nil(t, b.FeatureColumns("nh3"))
}

func TestClassifyFeature(t *testing.T) {
	tests := []struct {
		col   string
		kind  featureKind
		field string
	}{
		{"temp_lag1", rawLag, "temp"},
		{"pm10_log_lag1", logLag, "pm10"},
		{"pm25_scaled_lag1", scaledLag, "pm25"},
		{"wspd_lag1", rawLag, "wspd"},
	}
	for _, tc := range tests {
		spec, err := classifyFeature(tc.col)
		require.NoError(t, err, tc.col)
		assert.Equal(t, tc.kind, spec.Kind, tc.col)
		assert.Equal(t, tc.field, spec.Field, tc.col)
	}

	_, err := classifyFeature("pm25_scaled")
	require.Error(t, err)
}
