package model

// Weather and pollutant field names of a raw observation, as produced by the
// upstream collaborators and consumed by the prediction engine.
var (
	WeatherFields   = []string{"temp", "dwpt", "rhum", "prcp", "wdir", "wspd", "coco"}
	PollutantFields = []string{"co", "no", "no2", "nox", "o3", "pm10", "pm25", "so2"}
)

// Observation is one raw t-1 reading: seven weather fields plus eight
// pollutant concentrations, all in physical units (not logged, not scaled).
type Observation struct {
	Temp float64 `json:"temp"`
	Dwpt float64 `json:"dwpt"`
	Rhum float64 `json:"rhum"`
	Prcp float64 `json:"prcp"`
	Wdir float64 `json:"wdir"`
	Wspd float64 `json:"wspd"`
	Coco float64 `json:"coco"`

	CO   float64 `json:"co"`
	NO   float64 `json:"no"`
	NO2  float64 `json:"no2"`
	NOx  float64 `json:"nox"`
	O3   float64 `json:"o3"`
	PM10 float64 `json:"pm10"`
	PM25 float64 `json:"pm25"`
	SO2  float64 `json:"so2"`
}

// Record returns the observation as a field-name keyed map, the form the
// prediction engine consumes. Every field is present; callers assembling
// records from partial upstream data should build the map directly and omit
// what is missing.
func (o Observation) Record() map[string]float64 {
	return map[string]float64{
		"temp": o.Temp, "dwpt": o.Dwpt, "rhum": o.Rhum, "prcp": o.Prcp,
		"wdir": o.Wdir, "wspd": o.Wspd, "coco": o.Coco,
		"co": o.CO, "no": o.NO, "no2": o.NO2, "nox": o.NOx,
		"o3": o.O3, "pm10": o.PM10, "pm25": o.PM25, "so2": o.SO2,
	}
}

// FromRecord builds an Observation from a field-name keyed map. Absent fields
// stay zero.
func FromRecord(rec map[string]float64) Observation {
	return Observation{
		Temp: rec["temp"], Dwpt: rec["dwpt"], Rhum: rec["rhum"], Prcp: rec["prcp"],
		Wdir: rec["wdir"], Wspd: rec["wspd"], Coco: rec["coco"],
		CO: rec["co"], NO: rec["no"], NO2: rec["no2"], NOx: rec["nox"],
		O3: rec["o3"], PM10: rec["pm10"], PM25: rec["pm25"], SO2: rec["so2"],
	}
}
