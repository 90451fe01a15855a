package query

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	coremetrics "aqcast/core/metrics"
	"aqcast/core/model"
	"aqcast/infra/openaq"
)

// pm10Epsilon replaces a missing or zero pm10 reading so the log transform
// stays defined. The defaulting is deliberately a caller-side concern; the
// engine itself fails on values it cannot transform.
const pm10Epsilon = 1e-6

// combinedRequest is the POST body for /api/query/combined.
type combinedRequest struct {
	Lat         float64           `json:"lat"`
	Lng         float64           `json:"lng"`
	Radius      int               `json:"radius"`
	Altitude    *float64          `json:"altitude"`
	WeatherDays int               `json:"weather_days"`
	Date        string            `json:"date"`
	Hours       int               `json:"hours"`
	Raw         model.Observation `json:"raw"`
}

// Location serves GET /api/query/location: the nearest monitoring station
// with its latest measurements.
func (h *Handler) Location(w http.ResponseWriter, r *http.Request) {
	lat, okLat := parseCoord(r, "lat")
	lng, okLng := parseCoord(r, "lng")
	if !okLat || !okLng {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}
	radius := parseOptionalInt(r, "radius", 5000)

	section, err := h.fetchAirQuality(r.Context(), lat, lng, radius)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, section.payload())
}

// CombinedGet serves GET /api/query/combined: air quality plus weather, with
// next-hour predictions when hours=1 is requested. Upstream failures degrade
// per section rather than failing the whole response.
func (h *Handler) CombinedGet(w http.ResponseWriter, r *http.Request) {
	lat, okLat := parseCoord(r, "lat")
	lng, okLng := parseCoord(r, "lng")
	if !okLat || !okLng {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}
	radius := parseOptionalInt(r, "radius", 5000)
	weatherDays := parseOptionalInt(r, "weather_days", 7)
	altitude := parseOptionalFloat(r, "altitude")
	date := r.URL.Query().Get("date")
	hours := r.URL.Query().Get("hours")

	ctx := r.Context()
	result := map[string]any{
		"success":     true,
		"air_quality": map[string]any{},
		"weather":     map[string]any{},
		"location":    map[string]any{"latitude": lat, "longitude": lng},
	}
	var errs []string

	aq, err := h.fetchAirQuality(ctx, lat, lng, radius)
	if err != nil {
		errs = append(errs, "Air quality error: "+err.Error())
		result["air_quality"] = map[string]any{"error": err.Error()}
	} else {
		result["air_quality"] = aq.payload()
		loc := result["location"].(map[string]any)
		loc["nearest_station"] = aq.station.Name
		if aq.station.DistanceMeters != nil {
			loc["distance_to_station_km"] = math.Round(*aq.station.DistanceMeters/10) / 100
		}
	}

	weather, err := h.fetchWeather(ctx, lat, lng, altitude, date, weatherDays)
	if err != nil {
		errs = append(errs, "Weather error: "+err.Error())
		result["weather"] = map[string]any{"error": err.Error()}
	} else {
		result["weather"] = weather
	}

	switch {
	case hours == "":
		// prediction not requested
	case hours != "1":
		result["predictions"] = map[string]any{"error": "Only 1-hour ahead prediction is supported."}
	case aq == nil:
		result["predictions"] = map[string]any{"error": "air quality data unavailable for prediction"}
	default:
		pred, err := h.predictNextHour(ctx, lat, lng, aq.measurements)
		if err != nil {
			// Non-fatal: still return the combined data.
			result["predictions"] = map[string]any{"error": err.Error()}
		} else {
			result["predictions"] = map[string]any{"horizon_hours": 1, "values": pred}
		}
	}

	result["success"] = len(errs) == 0
	if len(errs) > 0 {
		result["message"] = strings.Join(errs, "; ")
	}
	writeJSON(w, http.StatusOK, result)
}

// CombinedPost serves POST /api/query/combined: the caller supplies the raw
// previous-hour record instead of having it assembled from upstream data.
func (h *Handler) CombinedPost(w http.ResponseWriter, r *http.Request) {
	var req combinedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Radius <= 0 {
		req.Radius = 5000
	}
	if req.WeatherDays <= 0 {
		req.WeatherDays = 7
	}

	ctx := r.Context()
	result := map[string]any{
		"success":     true,
		"air_quality": map[string]any{},
		"weather":     map[string]any{},
		"location":    map[string]any{"latitude": req.Lat, "longitude": req.Lng},
	}
	var errs []string

	aq, err := h.fetchAirQuality(ctx, req.Lat, req.Lng, req.Radius)
	if err != nil {
		errs = append(errs, "Air quality error: "+err.Error())
		result["air_quality"] = map[string]any{"error": err.Error()}
	} else {
		result["air_quality"] = aq.payload()
	}

	weather, err := h.fetchWeather(ctx, req.Lat, req.Lng, req.Altitude, req.Date, req.WeatherDays)
	if err != nil {
		errs = append(errs, "Weather error: "+err.Error())
		result["weather"] = map[string]any{"error": err.Error()}
	} else {
		result["weather"] = weather
	}

	if req.Hours == 1 {
		pred, err := h.runPrediction(ctx, req.Lat, req.Lng, req.Raw.Record())
		if err != nil {
			result["predictions"] = map[string]any{"error": err.Error()}
		} else {
			result["predictions"] = pred
		}
	} else {
		result["predictions"] = map[string]any{"error": "Only 1-hour ahead supported currently"}
	}

	result["success"] = len(errs) == 0
	if len(errs) > 0 {
		result["message"] = strings.Join(errs, "; ")
	}
	writeJSON(w, http.StatusOK, result)
}

// airQualityResult carries the fetched station data plus the shaped response
// section.
type airQualityResult struct {
	station      *openaq.Station
	measurements map[string]openaq.Measurement
	usedRadiusKM float64
}

func (a *airQualityResult) payload() map[string]any {
	sensors := make(map[int]map[string]any, len(a.station.Sensors))
	for _, s := range a.station.Sensors {
		sensors[s.ID] = map[string]any{
			"name":         s.Name,
			"display_name": s.DisplayName,
			"unit":         s.Units,
		}
	}
	return map[string]any{
		"nearest_station": map[string]any{
			"id":          a.station.ID,
			"name":        a.station.Name,
			"coordinates": map[string]float64{"latitude": a.station.Latitude, "longitude": a.station.Longitude},
			"distance":    a.station.DistanceMeters,
		},
		"latest_measurements":   a.measurements,
		"available_sensors":     sensors,
		"search_radius_used_km": a.usedRadiusKM,
	}
}

func (h *Handler) fetchAirQuality(ctx context.Context, lat, lng float64, radius int) (*airQualityResult, error) {
	start := time.Now()
	station, usedRadius, err := h.air.NearestStation(ctx, lat, lng, radius)
	h.recordFetch("openaq", start, err)
	if err != nil {
		return nil, err
	}
	start = time.Now()
	measurements, err := h.air.Latest(ctx, station)
	h.recordFetch("openaq", start, err)
	if err != nil {
		return nil, err
	}
	return &airQualityResult{
		station:      station,
		measurements: measurements,
		usedRadiusKM: float64(usedRadius) / 1000,
	}, nil
}

// predictNextHour assembles the raw record from the previous-hour weather
// sample and the latest station measurements, substituting safe numeric
// defaults for missing upstream values, then runs the pipeline.
func (h *Handler) predictNextHour(ctx context.Context, lat, lng float64, measurements map[string]openaq.Measurement) (model.Prediction, error) {
	start := time.Now()
	sample, err := h.hourly.LatestHour(ctx, lat, lng)
	h.recordFetch("open-meteo", start, err)
	if err != nil {
		return model.Prediction{}, err
	}

	raw := make(map[string]float64, 15)
	for _, field := range model.WeatherFields {
		raw[field] = sample[field] // missing sample values default to 0
	}
	for _, pollutant := range model.PollutantFields {
		if m, ok := measurements[pollutant]; ok {
			raw[pollutant] = m.Value
		} else {
			raw[pollutant] = 0
		}
	}
	if raw["pm10"] == 0 {
		raw["pm10"] = pm10Epsilon // avoid log(0)
	}
	if h.archive != nil {
		if err := h.archive.SaveObservation(ctx, lat, lng, model.FromRecord(raw)); err != nil {
			h.log.Errorf("archive observation: %v", err)
		}
	}
	return h.runPrediction(ctx, lat, lng, raw)
}

// runPrediction executes the engine and fans the result out to the metrics
// sink, the archive and the MQTT publisher. Archive and publish failures are
// logged, never surfaced.
func (h *Handler) runPrediction(ctx context.Context, lat, lng float64, raw map[string]float64) (model.Prediction, error) {
	requestID := uuid.NewString()
	start := time.Now()
	pred, err := h.predictor.Predict(raw)
	if err != nil {
		return model.Prediction{}, err
	}
	if serr := h.sink.RecordPrediction(coremetrics.PredictionEvent{
		RequestID:      requestID,
		Concentrations: pred.Concentrations,
		AQI:            pred.AQI,
		Duration:       time.Since(start),
		Time:           time.Now().UTC(),
	}); serr != nil {
		h.log.Warnf("record prediction metric: %v", serr)
	}
	if h.archive != nil {
		if err := h.archive.SavePrediction(ctx, lat, lng, pred); err != nil {
			h.log.Errorf("archive prediction: %v", err)
		}
	}
	if h.publisher != nil {
		if _, err := h.publisher.PublishPrediction(lat, lng, pred); err != nil {
			h.log.Errorf("publish prediction: %v", err)
		}
	}
	return pred, nil
}
