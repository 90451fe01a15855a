package aqi

import "testing"

func TestIndividual(t *testing.T) {
	tests := []struct {
		name      string
		pollutant string
		conc      float64
		want      int
		defined   bool
	}{
		{"pm25 upper edge of first bracket", "pm25", 12.0, 50, true},
		{"pm25 second bracket", "pm25", 18.5, 64, true},
		{"pm25 above highest ceiling", "pm25", 600.0, 0, false},
		{"o3 first bracket", "o3", 0.031, 29, true},
		{"o3 above table", "o3", 0.5, 0, false},
		{"pm10 mid bracket", "pm10", 30.0, 28, true},
		{"co zero", "co", 0.0, 0, true},
		{"nox has no table", "nox", 100.0, 0, false},
		{"no has no table", "no", 50.0, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Individual(tc.conc, tc.pollutant)
			if ok != tc.defined {
				t.Fatalf("defined = %v, want %v", ok, tc.defined)
			}
			if ok && got != tc.want {
				t.Fatalf("aqi = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]float64
		want    int
		defined bool
	}{
		{"dominant pollutant wins", map[string]float64{"pm25": 18.5, "o3": 0.031}, 64, true},
		{"undefined pollutant skipped", map[string]float64{"pm25": 600.0, "o3": 0.031}, 29, true},
		{"no table pollutants only", map[string]float64{"nox": 300.0, "no": 50.0}, 0, false},
		{"empty input", map[string]float64{}, 0, false},
		{"all zero is a concrete zero", map[string]float64{"pm25": 0.0}, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Overall(tc.values)
			if ok != tc.defined {
				t.Fatalf("defined = %v, want %v", ok, tc.defined)
			}
			if ok && got != tc.want {
				t.Fatalf("aqi = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestHasTable(t *testing.T) {
	for _, p := range []string{"pm25", "pm10", "no2", "so2", "co", "o3"} {
		if !HasTable(p) {
			t.Errorf("expected table for %s", p)
		}
	}
	for _, p := range []string{"nox", "no", "unknown"} {
		if HasTable(p) {
			t.Errorf("unexpected table for %s", p)
		}
	}
}
