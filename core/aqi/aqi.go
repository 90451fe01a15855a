// Package aqi converts pollutant concentrations into EPA-style Air Quality
// Index values using piecewise-linear breakpoint tables. The overall AQI
// follows the dominant-pollutant rule: the maximum of the defined individual
// values.
package aqi

import "math"

// Breakpoint maps one inclusive concentration range onto an AQI range.
type Breakpoint struct {
	ConcLow  float64
	ConcHigh float64
	AQILow   float64
	AQIHigh  float64
}

// breakpoints holds the EPA breakpoint tables per pollutant. Pollutants
// without a table (e.g. nox, no) never produce an individual AQI.
var breakpoints = map[string][]Breakpoint{
	"pm25": {
		{0.0, 12.0, 0, 50}, {12.1, 35.4, 51, 100}, {35.5, 55.4, 101, 150},
		{55.5, 150.4, 151, 200}, {150.5, 250.4, 201, 300}, {250.5, 500.4, 301, 500},
	},
	"pm10": {
		{0, 54, 0, 50}, {55, 154, 51, 100}, {155, 254, 101, 150},
		{255, 354, 151, 200}, {355, 424, 201, 300}, {425, 604, 301, 500},
	},
	"no2": {
		{0, 53, 0, 50}, {54, 100, 51, 100}, {101, 360, 101, 150},
		{361, 649, 151, 200}, {650, 1249, 201, 300}, {1250, 2049, 301, 500},
	},
	"so2": {
		{0, 35, 0, 50}, {36, 75, 51, 100}, {76, 185, 101, 150},
		{186, 304, 151, 200}, {305, 604, 201, 300}, {605, 1004, 301, 500},
	},
	"co": {
		{0.0, 4.4, 0, 50}, {4.5, 9.4, 51, 100}, {9.5, 12.4, 101, 150},
		{12.5, 15.4, 151, 200}, {15.5, 30.4, 201, 300}, {30.5, 50.4, 301, 500},
	},
	"o3": {
		{0.0, 0.054, 0, 50}, {0.055, 0.070, 51, 100}, {0.071, 0.085, 101, 150},
		{0.086, 0.105, 151, 200}, {0.106, 0.200, 201, 300},
	},
}

// HasTable reports whether a breakpoint table exists for the pollutant.
func HasTable(pollutant string) bool {
	_, ok := breakpoints[pollutant]
	return ok
}

// Individual computes the AQI for a single pollutant concentration. The
// second return value is false when the pollutant has no breakpoint table or
// the concentration falls outside every bracket (e.g. above the highest
// ceiling); that is an expected data-driven outcome, not an error.
func Individual(concentration float64, pollutant string) (int, bool) {
	for _, bp := range breakpoints[pollutant] {
		if concentration >= bp.ConcLow && concentration <= bp.ConcHigh {
			v := (bp.AQIHigh-bp.AQILow)/(bp.ConcHigh-bp.ConcLow)*(concentration-bp.ConcLow) + bp.AQILow
			return int(math.Round(v)), true
		}
	}
	return 0, false
}

// Overall computes the dominant-pollutant AQI over a set of concentrations.
// Pollutants without a table are skipped. The second return value is false
// when no pollutant produced a defined individual AQI.
func Overall(concentrations map[string]float64) (int, bool) {
	max, defined := 0, false
	for pollutant, value := range concentrations {
		if !HasTable(pollutant) {
			continue
		}
		if v, ok := Individual(value, pollutant); ok {
			if !defined || v > max {
				max = v
			}
			defined = true
		}
	}
	return max, defined
}
