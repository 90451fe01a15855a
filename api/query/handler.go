// Package query exposes the aggregation and prediction endpoints: nearest
// station air quality, Meteostat weather, and combined responses with
// optional next-hour predictions.
package query

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	corelogger "aqcast/core/logger"
	coremetrics "aqcast/core/metrics"
	"aqcast/core/model"
	"aqcast/infra/meteostat"
	"aqcast/infra/mqtt"
	"aqcast/infra/openaq"
	"aqcast/infra/store"
)

// AirQualityClient is the OpenAQ surface the handler consumes.
type AirQualityClient interface {
	NearestStation(ctx context.Context, lat, lng float64, radiusMeters int) (*openaq.Station, int, error)
	Latest(ctx context.Context, station *openaq.Station) (map[string]openaq.Measurement, error)
}

// WeatherClient is the Meteostat surface the handler consumes.
type WeatherClient interface {
	LatestSingleDay(ctx context.Context, lat, lng float64, alt *float64, target time.Time) (meteostat.Day, int, error)
	LatestRange(ctx context.Context, lat, lng float64, alt *float64, days int) ([]meteostat.Day, error)
}

// HourlyWeatherClient supplies the previous-hour weather sample for the
// prediction engine.
type HourlyWeatherClient interface {
	LatestHour(ctx context.Context, lat, lng float64) (map[string]float64, error)
}

// Predictor runs the next-hour prediction pipeline over one raw record.
type Predictor interface {
	Predict(raw map[string]float64) (model.Prediction, error)
}

// Handler serves the query endpoints.
type Handler struct {
	air       AirQualityClient
	weather   WeatherClient
	hourly    HourlyWeatherClient
	predictor Predictor
	sink      coremetrics.Sink
	archive   store.Archive
	publisher mqtt.Publisher
	log       corelogger.Logger
}

// NewHandler wires the query endpoints. archive and publisher may be nil when
// the corresponding feature is disabled; sink must not be nil (use NopSink).
func NewHandler(air AirQualityClient, weather WeatherClient, hourly HourlyWeatherClient,
	predictor Predictor, sink coremetrics.Sink, archive store.Archive,
	publisher mqtt.Publisher, log corelogger.Logger) *Handler {
	return &Handler{
		air: air, weather: weather, hourly: hourly, predictor: predictor,
		sink: sink, archive: archive, publisher: publisher, log: log,
	}
}

// RegisterRoutes attaches the endpoints to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/query/location", h.Location).Methods(http.MethodGet)
	r.HandleFunc("/api/query/combined", h.CombinedGet).Methods(http.MethodGet)
	r.HandleFunc("/api/query/combined", h.CombinedPost).Methods(http.MethodPost)
	r.HandleFunc("/api/query/weatherGetter", h.WeatherGetter).Methods(http.MethodGet)
	r.HandleFunc("/api/weather/latest/range", h.WeatherRange).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"detail": msg})
}

func parseCoord(r *http.Request, name string) (float64, bool) {
	v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	return v, err == nil
}

func parseOptionalFloat(r *http.Request, name string) *float64 {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseOptionalInt(r *http.Request, name string, def int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// recordFetch reports one upstream call to the metrics sink.
func (h *Handler) recordFetch(source string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if serr := h.sink.RecordFetch(coremetrics.FetchEvent{
		Source: source, Outcome: outcome,
		Duration: time.Since(start), Time: time.Now().UTC(),
	}); serr != nil {
		h.log.Warnf("record fetch metric: %v", serr)
	}
}
