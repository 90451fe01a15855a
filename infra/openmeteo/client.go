// Package openmeteo fetches the previous-hour weather sample the prediction
// engine consumes, mapped from Open-Meteo's hourly variable names onto the
// model's field names.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Config holds the Open-Meteo client settings.
type Config struct {
	BaseURL string `json:"base_url"`
	// PastHours controls how far back the hourly window reaches; the last
	// available hour is used.
	PastHours int `json:"past_hours"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.open-meteo.com/v1/forecast"
	}
	if c.PastHours <= 0 {
		c.PastHours = 48
	}
}

const hourlyVars = "temperature_2m,dewpoint_2m,relative_humidity_2m,precipitation,wind_direction_10m,wind_speed_10m,weather_code"

// Client talks to the Open-Meteo forecast API.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates an Open-Meteo client. A nil httpClient gets a 10 second
// timeout default.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.SetDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{cfg: cfg, client: httpClient}
}

// LatestHour returns the last available hourly sample keyed by the model's
// weather field names (temp, dwpt, rhum, prcp, wdir, wspd, coco).
func (c *Client) LatestHour(ctx context.Context, lat, lng float64) (map[string]float64, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lng))
	q.Set("hourly", hourlyVars)
	q.Set("past_hours", fmt.Sprintf("%d", c.cfg.PastHours))
	q.Set("forecast_hours", "0")
	q.Set("timezone", "UTC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open-meteo request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("open-meteo status %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Hourly struct {
			Time             []string  `json:"time"`
			Temperature      []float64 `json:"temperature_2m"`
			Dewpoint         []float64 `json:"dewpoint_2m"`
			RelativeHumidity []float64 `json:"relative_humidity_2m"`
			Precipitation    []float64 `json:"precipitation"`
			WindDirection    []float64 `json:"wind_direction_10m"`
			WindSpeed        []float64 `json:"wind_speed_10m"`
			WeatherCode      []float64 `json:"weather_code"`
		} `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode open-meteo response: %w", err)
	}

	h := payload.Hourly
	n := len(h.Time)
	if n == 0 {
		return nil, fmt.Errorf("open-meteo returned no hourly data")
	}
	series := map[string][]float64{
		"temp": h.Temperature,
		"dwpt": h.Dewpoint,
		"rhum": h.RelativeHumidity,
		"prcp": h.Precipitation,
		"wdir": h.WindDirection,
		"wspd": h.WindSpeed,
		"coco": h.WeatherCode,
	}
	out := make(map[string]float64, len(series))
	for field, vals := range series {
		if len(vals) != n {
			return nil, fmt.Errorf("open-meteo series %s has %d values, expected %d", field, len(vals), n)
		}
		out[field] = vals[n-1]
	}
	return out, nil
}
