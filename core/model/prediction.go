package model

import "encoding/json"

// Prediction holds next-hour concentration estimates per pollutant plus the
// derived overall AQI. AQI is nil when no pollutant fell inside a breakpoint
// bracket, which is distinct from an AQI of zero.
type Prediction struct {
	Concentrations map[string]float64
	AQI            *int
}

// MarshalJSON flattens the prediction into a single object: one key per
// pollutant plus "aqi" (null when undefined).
func (p Prediction) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Concentrations)+1)
	for k, v := range p.Concentrations {
		out[k] = v
	}
	out["aqi"] = p.AQI
	return json.Marshal(out)
}
