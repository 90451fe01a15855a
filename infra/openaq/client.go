// Package openaq implements the subset of the OpenAQ v3 API the service
// needs: nearest-station lookup with radius widening and latest measurements
// per station.
package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"aqcast/infra/logger"
)

// Config holds the OpenAQ client settings.
type Config struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	// RadiusMeters is the initial search radius for nearest-station lookup.
	RadiusMeters int `json:"radius_meters"`
	// MaxRadiusMeters caps the widening search.
	MaxRadiusMeters int `json:"max_radius_meters"`
	// RadiusIncrementMeters is added per widening attempt.
	RadiusIncrementMeters int `json:"radius_increment_meters"`
	MaxRetries            int `json:"max_retries"`
	BackoffMS             int `json:"backoff_ms"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openaq.org/v3"
	}
	if c.RadiusMeters <= 0 {
		c.RadiusMeters = 5000
	}
	if c.MaxRadiusMeters <= 0 {
		c.MaxRadiusMeters = 100000
	}
	if c.RadiusIncrementMeters <= 0 {
		c.RadiusIncrementMeters = 10000
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 200
	}
}

// Sensor describes one measured parameter at a station.
type Sensor struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Units       string `json:"units"`
}

// Station is an OpenAQ monitoring location.
type Station struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	// DistanceMeters is the distance from the queried coordinates, when the
	// API reports it.
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	Sensors        []Sensor `json:"sensors"`
}

// Measurement is the latest reading of one parameter.
type Measurement struct {
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	DisplayName string  `json:"display_name"`
}

// ErrNoStations indicates the widening search exhausted the maximum radius
// without finding a monitoring location. It is a data outcome, not a
// transport failure.
type ErrNoStations struct {
	MaxRadiusMeters int
}

func (e *ErrNoStations) Error() string {
	return fmt.Sprintf("no locations found within %.0fkm radius", float64(e.MaxRadiusMeters)/1000)
}

// Client talks to the OpenAQ v3 API.
type Client struct {
	cfg    Config
	client *http.Client
	log    logger.Logger
}

// NewClient creates an OpenAQ client. A nil httpClient gets a 10 second
// timeout default.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.SetDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{cfg: cfg, client: httpClient, log: logger.New("openaq")}
}

// NearestStation finds the closest monitoring location to the coordinates,
// widening the search radius in fixed increments until a station is found or
// the maximum radius is exhausted. The radius actually used is returned in
// meters.
func (c *Client) NearestStation(ctx context.Context, lat, lng float64, radiusMeters int) (*Station, int, error) {
	if radiusMeters <= 0 {
		radiusMeters = c.cfg.RadiusMeters
	}
	for radius := radiusMeters; radius <= c.cfg.MaxRadiusMeters; radius += c.cfg.RadiusIncrementMeters {
		st, err := c.listNearest(ctx, lat, lng, radius)
		if err != nil {
			return nil, 0, err
		}
		if st != nil {
			return st, radius, nil
		}
	}
	return nil, c.cfg.MaxRadiusMeters, &ErrNoStations{MaxRadiusMeters: c.cfg.MaxRadiusMeters}
}

func (c *Client) listNearest(ctx context.Context, lat, lng float64, radius int) (*Station, error) {
	q := url.Values{}
	q.Set("coordinates", fmt.Sprintf("%f,%f", lat, lng))
	q.Set("radius", fmt.Sprintf("%d", radius))
	q.Set("limit", "1")

	var payload struct {
		Results []struct {
			ID          int     `json:"id"`
			Name        string  `json:"name"`
			Distance    float64 `json:"distance"`
			Coordinates struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"coordinates"`
			Sensors []struct {
				ID        int `json:"id"`
				Parameter struct {
					Name        string `json:"name"`
					DisplayName string `json:"displayName"`
					Units       string `json:"units"`
				} `json:"parameter"`
			} `json:"sensors"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, c.cfg.BaseURL+"/locations?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	if len(payload.Results) == 0 {
		return nil, nil
	}
	r := payload.Results[0]
	st := &Station{
		ID:        r.ID,
		Name:      r.Name,
		Latitude:  r.Coordinates.Latitude,
		Longitude: r.Coordinates.Longitude,
	}
	if r.Distance > 0 {
		d := r.Distance
		st.DistanceMeters = &d
	}
	for _, s := range r.Sensors {
		st.Sensors = append(st.Sensors, Sensor{
			ID:          s.ID,
			Name:        s.Parameter.Name,
			DisplayName: s.Parameter.DisplayName,
			Units:       s.Parameter.Units,
		})
	}
	return st, nil
}

// Latest fetches the most recent measurement per parameter for a station,
// keyed by parameter name (pm25, o3, ...). Readings whose sensor is unknown
// are skipped.
func (c *Client) Latest(ctx context.Context, station *Station) (map[string]Measurement, error) {
	var payload struct {
		Results []struct {
			SensorsID int     `json:"sensorsId"`
			Value     float64 `json:"value"`
		} `json:"results"`
	}
	u := fmt.Sprintf("%s/locations/%d/latest", c.cfg.BaseURL, station.ID)
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}

	byID := make(map[int]Sensor, len(station.Sensors))
	for _, s := range station.Sensors {
		byID[s.ID] = s
	}
	out := make(map[string]Measurement, len(payload.Results))
	for _, r := range payload.Results {
		s, ok := byID[r.SensorsID]
		if !ok {
			c.log.Warnf("latest reading for unknown sensor %d at station %d", r.SensorsID, station.ID)
			continue
		}
		out[s.Name] = Measurement{Value: r.Value, Unit: s.Units, DisplayName: s.DisplayName}
	}
	return out, nil
}

// getJSON performs a GET with bounded retry and exponential backoff on
// transport errors and 5xx responses.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	backoff := time.Duration(c.cfg.BackoffMS) * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff * time.Duration(1<<(attempt-1))):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if c.cfg.APIKey != "" {
			req.Header.Set("X-API-Key", c.cfg.APIKey)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("openaq request: %w", err)
			c.log.Warnf("attempt %d failed: %v", attempt+1, err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("openaq status %d", resp.StatusCode)
			c.log.Warnf("attempt %d: status %d", attempt+1, resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("openaq status %d: %s", resp.StatusCode, body)
		}
		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("decode openaq response: %w", err)
		}
		return nil
	}
	return lastErr
}
