// Package meteostat wraps the Meteostat point/daily JSON API. The original
// data source has gaps near the present, so the latest-day lookup walks
// backwards from the target date until a day with any observed value is
// found.
package meteostat

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

// Config holds the Meteostat client settings.
type Config struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	// MaxLookbackDays bounds the backwards search for the most recent day
	// with data.
	MaxLookbackDays int `json:"max_lookback_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://meteostat.p.rapidapi.com"
	}
	if c.MaxLookbackDays <= 0 {
		c.MaxLookbackDays = 365
	}
}

// Day is one daily weather record. Fields are pointers because Meteostat
// reports null for parameters a station did not observe.
type Day struct {
	Date string   `json:"date"`
	Tavg *float64 `json:"tavg"`
	Tmin *float64 `json:"tmin"`
	Tmax *float64 `json:"tmax"`
	Prcp *float64 `json:"prcp"`
	Snow *float64 `json:"snow"`
	Wdir *float64 `json:"wdir"`
	Wspd *float64 `json:"wspd"`
	Wpgt *float64 `json:"wpgt"`
	Pres *float64 `json:"pres"`
	Tsun *float64 `json:"tsun"`
}

// HasData reports whether any parameter was observed that day.
func (d Day) HasData() bool {
	return d.Tavg != nil || d.Tmin != nil || d.Tmax != nil || d.Prcp != nil ||
		d.Snow != nil || d.Wdir != nil || d.Wspd != nil || d.Wpgt != nil ||
		d.Pres != nil || d.Tsun != nil
}

// Client talks to the Meteostat point API.
type Client struct {
	cfg    Config
	client *http.Client
	log    logger.Logger
	// now is overridable in tests.
	now func() time.Time
}

// NewClient creates a Meteostat client. A nil httpClient gets a 10 second
// timeout default.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.SetDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{cfg: cfg, client: httpClient, log: logger.New("meteostat"), now: time.Now}
}

const dateLayout = "2006-01-02"

// FetchDaily retrieves daily records for the inclusive date range.
func (c *Client) FetchDaily(ctx context.Context, lat, lng float64, alt *float64, start, end time.Time) ([]Day, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))
	if alt != nil {
		q.Set("alt", fmt.Sprintf("%.0f", *alt))
	}
	q.Set("start", start.Format(dateLayout))
	q.Set("end", end.Format(dateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/point/daily?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("x-rapidapi-key", c.cfg.APIKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meteostat request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("meteostat status %d: %s", resp.StatusCode, body)
	}
	var payload struct {
		Data []Day `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode meteostat response: %w", err)
	}
	return payload.Data, nil
}

// LatestSingleDay returns the most recent day with data at or before the
// target date, along with how many days back it lies. A zero target means
// today.
func (c *Client) LatestSingleDay(ctx context.Context, lat, lng float64, alt *float64, target time.Time) (Day, int, error) {
	if target.IsZero() {
		target = c.now()
	}
	target = target.UTC().Truncate(24 * time.Hour)
	start := target.AddDate(0, 0, -(c.cfg.MaxLookbackDays - 1))
	days, err := c.FetchDaily(ctx, lat, lng, alt, start, target)
	if err != nil {
		return Day{}, 0, err
	}
	for i := len(days) - 1; i >= 0; i-- {
		if !days[i].HasData() {
			continue
		}
		d, err := time.Parse(dateLayout, days[i].Date)
		if err != nil {
			return Day{}, 0, fmt.Errorf("parse date %q: %w", days[i].Date, err)
		}
		return days[i], int(target.Sub(d).Hours() / 24), nil
	}
	return Day{}, 0, fmt.Errorf("no data found in the last %d days", c.cfg.MaxLookbackDays)
}

// LatestRange returns the given number of days leading up to the most recent
// day with data.
func (c *Client) LatestRange(ctx context.Context, lat, lng float64, alt *float64, days int) ([]Day, error) {
	if days <= 0 {
		days = 7
	}
	latest, _, err := c.LatestSingleDay(ctx, lat, lng, alt, time.Time{})
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(dateLayout, latest.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", latest.Date, err)
	}
	start := end.AddDate(0, 0, -(days - 1))
	out, err := c.FetchDaily(ctx, lat, lng, alt, start, end)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("fetched %d daily records ending %s", len(out), latest.Date)
	return out, nil
}
