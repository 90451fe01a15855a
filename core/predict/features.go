package predict

import (
	"fmt"
	"strings"
)

// Feature column name conventions shared with the offline training pipeline.
const (
	suffixLog        = "_log"
	suffixLag1       = "_lag1"
	suffixLogLag1    = "_log_lag1"
	suffixScaledLag1 = "_scaled_lag1"
)

// featureKind tags how a declared feature column is derived from the raw
// record. Classification happens once at artifact load so the builder
// switches on a closed enumeration instead of re-inspecting suffixes per
// request.
type featureKind int

const (
	// rawLag copies the previous-hour raw field directly.
	rawLag featureKind = iota
	// logLag applies the field's log policy to the raw value.
	logLag
	// scaledLag takes the value from the pollutant's min-max scaler output.
	scaledLag
)

// featureSpec is the resolved form of one feature column.
type featureSpec struct {
	Column string
	Kind   featureKind
	// Field is the raw record field for rawLag/logLag columns, or the
	// scaler base name (possibly *_log) for scaledLag columns.
	Field string
}

// classifyFeature resolves a feature column name into its tagged form.
// Unknown shapes are rejected here, at load time, rather than silently
// yielding undefined values at inference time.
func classifyFeature(col string) (featureSpec, error) {
	switch {
	case strings.HasSuffix(col, suffixScaledLag1):
		return featureSpec{Column: col, Kind: scaledLag, Field: strings.TrimSuffix(col, suffixScaledLag1)}, nil
	case strings.HasSuffix(col, suffixLogLag1):
		return featureSpec{Column: col, Kind: logLag, Field: strings.TrimSuffix(col, suffixLogLag1)}, nil
	case strings.HasSuffix(col, suffixLag1):
		return featureSpec{Column: col, Kind: rawLag, Field: strings.TrimSuffix(col, suffixLag1)}, nil
	default:
		return featureSpec{}, fmt.Errorf("feature column %q has no recognized lag-1 form", col)
	}
}

// baseValue computes one scaler base feature from the raw record. Base names
// ending in _log are derived via the field's log policy; everything else is
// the raw field itself.
func baseValue(name string, raw map[string]float64) (float64, error) {
	if strings.HasSuffix(name, suffixLog) {
		field := strings.TrimSuffix(name, suffixLog)
		v, ok := raw[field]
		if !ok {
			return 0, &MissingInputError{Field: field, Column: name}
		}
		return logIfNeeded(field, v), nil
	}
	v, ok := raw[name]
	if !ok {
		return 0, &MissingInputError{Field: name, Column: name}
	}
	return v, nil
}
