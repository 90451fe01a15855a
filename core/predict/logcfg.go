package predict

import "math"

// logPolicy describes whether a pollutant's value is natural-log transformed
// and the additive shift applied before taking the log.
type logPolicy struct {
	Apply bool
	Shift float64
}

// logCfg is fixed at compile time and must match the configuration the models
// were trained with.
var logCfg = map[string]logPolicy{
	"pm10": {Apply: true, Shift: 0.0},
	"no":   {Apply: true, Shift: 1.0},
	"nox":  {Apply: true, Shift: 1.0},
	"pm25": {Apply: true, Shift: 0.9},
	"no2":  {Apply: true, Shift: 1.0},
	"o3":   {Apply: false, Shift: 0.0},
	"so2":  {Apply: false, Shift: 0.0},
	"co":   {Apply: false, Shift: 0.0},
}

// logIfNeeded applies the log policy of the given field to a raw value.
// Fields without a policy pass through unchanged.
func logIfNeeded(field string, x float64) float64 {
	cfg, ok := logCfg[field]
	if !ok || !cfg.Apply {
		return x
	}
	return math.Log(x + cfg.Shift)
}

// invertLog undoes the training-time target transform for a pollutant whose
// model was fit in log space.
func invertLog(pollutant string, v float64) float64 {
	return math.Exp(v) - logCfg[pollutant].Shift
}
