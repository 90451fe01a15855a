// Package store archives fetched observations and prediction results in
// Postgres. Archiving is best-effort: a failed insert is logged by the
// caller, never surfaced to the requester.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"aqcast/core/model"
)

// Config holds the Postgres connection settings.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port <= 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
}

// DSN renders the lib/pq connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// ObservationRow is one archived raw observation.
type ObservationRow struct {
	ID        int64     `db:"id"`
	Latitude  float64   `db:"latitude"`
	Longitude float64   `db:"longitude"`
	Temp      float64   `db:"temp"`
	Dwpt      float64   `db:"dwpt"`
	Rhum      float64   `db:"rhum"`
	Prcp      float64   `db:"prcp"`
	Wdir      float64   `db:"wdir"`
	Wspd      float64   `db:"wspd"`
	Coco      float64   `db:"coco"`
	CO        float64   `db:"co"`
	NO        float64   `db:"no"`
	NO2       float64   `db:"no2"`
	NOx       float64   `db:"nox"`
	O3        float64   `db:"o3"`
	PM10      float64   `db:"pm10"`
	PM25      float64   `db:"pm25"`
	SO2       float64   `db:"so2"`
	CreatedAt time.Time `db:"created_at"`
}

// PredictionRow is one archived prediction result.
type PredictionRow struct {
	ID        int64     `db:"id"`
	Latitude  float64   `db:"latitude"`
	Longitude float64   `db:"longitude"`
	CO        float64   `db:"co"`
	NO        float64   `db:"no"`
	NO2       float64   `db:"no2"`
	NOx       float64   `db:"nox"`
	O3        float64   `db:"o3"`
	PM10      float64   `db:"pm10"`
	PM25      float64   `db:"pm25"`
	SO2       float64   `db:"so2"`
	AQI       *int      `db:"aqi"`
	CreatedAt time.Time `db:"created_at"`
}

// Archive persists observations and predictions.
type Archive interface {
	SaveObservation(ctx context.Context, lat, lng float64, obs model.Observation) error
	SavePrediction(ctx context.Context, lat, lng float64, pred model.Prediction) error
	RecentPredictions(ctx context.Context, limit int) ([]PredictionRow, error)
	Close() error
}

// PostgresArchive implements Archive over sqlx.
type PostgresArchive struct {
	db *sqlx.DB
}

// Open connects to Postgres, verifies the connection and ensures the schema
// exists.
func Open(ctx context.Context, cfg Config) (*PostgresArchive, error) {
	cfg.SetDefaults()
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a := &PostgresArchive{db: db}
	if err := a.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *PostgresArchive) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS observations (
	id BIGSERIAL PRIMARY KEY,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	temp DOUBLE PRECISION, dwpt DOUBLE PRECISION, rhum DOUBLE PRECISION,
	prcp DOUBLE PRECISION, wdir DOUBLE PRECISION, wspd DOUBLE PRECISION,
	coco DOUBLE PRECISION,
	co DOUBLE PRECISION, "no" DOUBLE PRECISION, no2 DOUBLE PRECISION,
	nox DOUBLE PRECISION, o3 DOUBLE PRECISION, pm10 DOUBLE PRECISION,
	pm25 DOUBLE PRECISION, so2 DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS predictions (
	id BIGSERIAL PRIMARY KEY,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	co DOUBLE PRECISION, "no" DOUBLE PRECISION, no2 DOUBLE PRECISION,
	nox DOUBLE PRECISION, o3 DOUBLE PRECISION, pm10 DOUBLE PRECISION,
	pm25 DOUBLE PRECISION, so2 DOUBLE PRECISION,
	aqi INTEGER,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	if _, err := a.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// SaveObservation archives one raw observation.
func (a *PostgresArchive) SaveObservation(ctx context.Context, lat, lng float64, obs model.Observation) error {
	query := `
		INSERT INTO observations (
			latitude, longitude, temp, dwpt, rhum, prcp, wdir, wspd, coco,
			co, "no", no2, nox, o3, pm10, pm25, so2
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
	_, err := a.db.ExecContext(ctx, query,
		lat, lng, obs.Temp, obs.Dwpt, obs.Rhum, obs.Prcp, obs.Wdir, obs.Wspd, obs.Coco,
		obs.CO, obs.NO, obs.NO2, obs.NOx, obs.O3, obs.PM10, obs.PM25, obs.SO2)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// SavePrediction archives one prediction result.
func (a *PostgresArchive) SavePrediction(ctx context.Context, lat, lng float64, pred model.Prediction) error {
	c := pred.Concentrations
	query := `
		INSERT INTO predictions (
			latitude, longitude, co, "no", no2, nox, o3, pm10, pm25, so2, aqi
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := a.db.ExecContext(ctx, query,
		lat, lng, c["co"], c["no"], c["no2"], c["nox"], c["o3"], c["pm10"], c["pm25"], c["so2"], pred.AQI)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// RecentPredictions returns the newest archived predictions.
func (a *PostgresArchive) RecentPredictions(ctx context.Context, limit int) ([]PredictionRow, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, latitude, longitude, co, "no", no2, nox, o3, pm10, pm25, so2, aqi, created_at
		FROM predictions
		ORDER BY created_at DESC
		LIMIT $1`
	var rows []PredictionRow
	if err := a.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("select predictions: %w", err)
	}
	return rows, nil
}

// Close releases the connection pool.
func (a *PostgresArchive) Close() error { return a.db.Close() }
