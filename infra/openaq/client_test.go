package openaq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stationJSON = `{
  "results": [{
    "id": 7,
    "name": "Station A",
    "distance": 1234.5,
    "coordinates": {"latitude": 41.0, "longitude": 29.0},
    "sensors": [
      {"id": 1, "parameter": {"name": "pm25", "displayName": "PM2.5", "units": "µg/m³"}},
      {"id": 2, "parameter": {"name": "o3", "displayName": "O3", "units": "ppm"}}
    ]
  }]
}`

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:               baseURL,
		RadiusMeters:          5000,
		MaxRadiusMeters:       30000,
		RadiusIncrementMeters: 10000,
		MaxRetries:            2,
		BackoffMS:             1,
	}
}

func TestNearestStationWidensRadius(t *testing.T) {
	var radii []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		radius := r.URL.Query().Get("radius")
		radii = append(radii, radius)
		if radius == "15000" {
			fmt.Fprint(w, stationJSON)
			return
		}
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), srv.Client())
	st, used, err := c.NearestStation(context.Background(), 41.0, 29.0, 5000)
	require.NoError(t, err)

	assert.Equal(t, []string{"5000", "15000"}, radii)
	assert.Equal(t, 15000, used)
	assert.Equal(t, 7, st.ID)
	assert.Equal(t, "Station A", st.Name)
	require.NotNil(t, st.DistanceMeters)
	assert.InDelta(t, 1234.5, *st.DistanceMeters, 1e-9)
	require.Len(t, st.Sensors, 2)
	assert.Equal(t, "pm25", st.Sensors[0].Name)
}

func TestNearestStationExhaustsRadius(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), srv.Client())
	_, used, err := c.NearestStation(context.Background(), 41.0, 29.0, 5000)

	var noStations *ErrNoStations
	require.ErrorAs(t, err, &noStations)
	assert.Equal(t, 30000, noStations.MaxRadiusMeters)
	assert.Equal(t, 30000, used)
}

func TestLatestMatchesSensors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/locations/7/latest", r.URL.Path)
		fmt.Fprint(w, `{"results": [
			{"sensorsId": 1, "value": 18.5},
			{"sensorsId": 99, "value": 3.0}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), srv.Client())
	station := &Station{ID: 7, Sensors: []Sensor{
		{ID: 1, Name: "pm25", DisplayName: "PM2.5", Units: "µg/m³"},
	}}
	got, err := c.Latest(context.Background(), station)
	require.NoError(t, err)

	// The reading from the unknown sensor is dropped.
	require.Len(t, got, 1)
	assert.InDelta(t, 18.5, got["pm25"].Value, 1e-9)
	assert.Equal(t, "µg/m³", got["pm25"].Unit)
}

func TestGetJSONRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, stationJSON)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), srv.Client())
	st, _, err := c.NearestStation(context.Background(), 41.0, 29.0, 5000)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 7, st.ID)
}

func TestGetJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), srv.Client())
	_, _, err := c.NearestStation(context.Background(), 41.0, 29.0, 5000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, 1, calls)

	var noStations *ErrNoStations
	assert.False(t, errors.As(err, &noStations))
}

func TestGetJSONSendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		fmt.Fprint(w, stationJSON)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.APIKey = "secret"
	c := NewClient(cfg, srv.Client())
	_, _, err := c.NearestStation(context.Background(), 41.0, 29.0, 5000)
	require.NoError(t, err)
}
