package query

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"aqcast/infra/meteostat"
)

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// fetchWeather returns the weather section of a combined response: a single
// day when date is set, otherwise the latest range.
func (h *Handler) fetchWeather(ctx context.Context, lat, lng float64, alt *float64, date string, days int) (map[string]any, error) {
	if date != "" {
		target, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("invalid date format, use YYYY-MM-DD")
		}
		start := time.Now()
		day, daysBack, err := h.weather.LatestSingleDay(ctx, lat, lng, alt, target)
		h.recordFetch("meteostat", start, err)
		if err != nil {
			return nil, err
		}
		return singleDayPayload(lat, lng, alt, date, day, daysBack), nil
	}

	start := time.Now()
	records, err := h.weather.LatestRange(ctx, lat, lng, alt, days)
	h.recordFetch("meteostat", start, err)
	if err != nil {
		return nil, err
	}
	return rangePayload(lat, lng, alt, records), nil
}

// WeatherGetter serves GET /api/query/weatherGetter: the most recent single
// day of weather data, searching backwards until data is found.
func (h *Handler) WeatherGetter(w http.ResponseWriter, r *http.Request) {
	lat, okLat := parseCoord(r, "latitude")
	lng, okLng := parseCoord(r, "longitude")
	if !okLat || !okLng {
		writeError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	alt := parseOptionalFloat(r, "altitude")

	var target time.Time
	requested := r.URL.Query().Get("date")
	if requested != "" {
		var err error
		target, err = time.Parse("2006-01-02", requested)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
			return
		}
	}

	start := time.Now()
	day, daysBack, err := h.weather.LatestSingleDay(r.Context(), lat, lng, alt, target)
	h.recordFetch("meteostat", start, err)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if requested == "" {
		requested = time.Now().UTC().Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, singleDayPayload(lat, lng, alt, requested, day, daysBack))
}

// WeatherRange serves GET /api/weather/latest/range: the most recent range of
// daily weather records.
func (h *Handler) WeatherRange(w http.ResponseWriter, r *http.Request) {
	lat, okLat := parseCoord(r, "latitude")
	lng, okLng := parseCoord(r, "longitude")
	if !okLat || !okLng {
		writeError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	alt := parseOptionalFloat(r, "altitude")
	days := parseOptionalInt(r, "days", 7)

	start := time.Now()
	records, err := h.weather.LatestRange(r.Context(), lat, lng, alt, days)
	h.recordFetch("meteostat", start, err)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rangePayload(lat, lng, alt, records))
}

func locationPayload(lat, lng float64, alt *float64) map[string]any {
	loc := map[string]any{"latitude": lat, "longitude": lng}
	if alt != nil {
		loc["altitude"] = *alt
	}
	return loc
}

func singleDayPayload(lat, lng float64, alt *float64, requested string, day meteostat.Day, daysBack int) map[string]any {
	return map[string]any{
		"success":        true,
		"location":       locationPayload(lat, lng, alt),
		"requested_date": requested,
		"actual_date":    day.Date,
		"days_back":      daysBack,
		"data":           day,
	}
}

func rangePayload(lat, lng float64, alt *float64, records []meteostat.Day) map[string]any {
	dateRange := map[string]any{}
	if len(records) > 0 {
		dateRange["start"] = records[0].Date
		dateRange["end"] = records[len(records)-1].Date
	}
	return map[string]any{
		"success":       true,
		"data":          records,
		"total_records": len(records),
		"date_range":    dateRange,
		"location":      locationPayload(lat, lng, alt),
	}
}
