package meteostat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 23, 14, 0, 0, 0, time.UTC)
}

func TestDayHasData(t *testing.T) {
	assert.False(t, Day{Date: "2026-08-23"}.HasData())
	v := 24.5
	assert.True(t, Day{Date: "2026-08-23", Tavg: &v}.HasData())
	assert.True(t, Day{Date: "2026-08-23", Prcp: &v}.HasData())
}

func TestLatestSingleDayWalksBackwards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/point/daily", r.URL.Path)
		// Most recent days have no observations yet.
		fmt.Fprint(w, `{"data": [
			{"date": "2026-08-20", "tavg": 24.5},
			{"date": "2026-08-21"},
			{"date": "2026-08-22"},
			{"date": "2026-08-23"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MaxLookbackDays: 30}, srv.Client())
	c.now = fixedNow

	day, daysBack, err := c.LatestSingleDay(context.Background(), 41.0, 29.0, nil, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2026-08-20", day.Date)
	require.NotNil(t, day.Tavg)
	assert.InDelta(t, 24.5, *day.Tavg, 1e-9)
	assert.Equal(t, 3, daysBack)
}

func TestLatestSingleDayNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [{"date": "2026-08-22"}, {"date": "2026-08-23"}]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MaxLookbackDays: 30}, srv.Client())
	c.now = fixedNow

	_, _, err := c.LatestSingleDay(context.Background(), 41.0, 29.0, nil, time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data found in the last 30 days")
}

func TestLatestRangeAnchorsOnLatestDataDay(t *testing.T) {
	var ranges []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ranges = append(ranges, q.Get("start")+".."+q.Get("end"))
		fmt.Fprint(w, `{"data": [
			{"date": "2026-08-19", "tavg": 23.0},
			{"date": "2026-08-20", "tavg": 24.5},
			{"date": "2026-08-21"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, MaxLookbackDays: 30}, srv.Client())
	c.now = fixedNow

	days, err := c.LatestRange(context.Background(), 41.0, 29.0, nil, 7)
	require.NoError(t, err)
	assert.Len(t, days, 3)
	require.Len(t, ranges, 2)
	// Second fetch covers the 7 days ending at the latest day with data.
	assert.Equal(t, "2026-08-14..2026-08-20", ranges[1])
}

func TestFetchDailySendsAPIKeyAndAltitude(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rapid-key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "120", r.URL.Query().Get("alt"))
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "rapid-key"}, srv.Client())
	alt := 120.0
	_, err := c.FetchDaily(context.Background(), 41.0, 29.0, &alt,
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
}

func TestFetchDailySurfacesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, srv.Client())
	_, err := c.FetchDaily(context.Background(), 41.0, 29.0, nil, fixedNow(), fixedNow())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
