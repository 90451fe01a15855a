package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `server:
  port: 9090
  allowed_origins:
    - "http://localhost:3000"
artifacts:
  dir: "./trained_models"
  allow_partial_features: true
openaq:
  api_key: "test-key"
  radius_meters: 7000
meteostat:
  api_key: "rapid-key"
metrics:
  prometheus_enabled: true
store:
  enabled: true
  user: "aq"
  database: "aqcast"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"server.port", cfg.Server.Port, 9090},
		{"server.read_timeout default", cfg.Server.ReadTimeoutSeconds, 15},
		{"server.allowed_origins", len(cfg.Server.AllowedOrigins), 1},
		{"artifacts.dir", cfg.Artifacts.Dir, "./trained_models"},
		{"artifacts.allow_partial", cfg.Artifacts.AllowPartialFeatures, true},
		{"openaq.api_key", cfg.OpenAQ.APIKey, "test-key"},
		{"openaq.radius", cfg.OpenAQ.RadiusMeters, 7000},
		{"openaq.max_radius default", cfg.OpenAQ.MaxRadiusMeters, 100000},
		{"meteostat.base_url default", cfg.Meteostat.BaseURL, "https://meteostat.p.rapidapi.com"},
		{"openmeteo.past_hours default", cfg.OpenMeteo.PastHours, 48},
		{"metrics.prometheus", cfg.Metrics.PrometheusEnabled, true},
		{"store.enabled", cfg.Store.Enabled, true},
		{"store.port default", cfg.Store.Port, 5432},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.client_id default", cfg.MQTT.ClientID, "aqcast"},
		{"mqtt.topic default", cfg.MQTT.Topic, "aqcast/predictions"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `artifacts:
  dir: "./trained_models"
openaq:
  api_key: "from-file"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("AQ_OPENAQ__API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.OpenAQ.APIKey != "from-env" {
		t.Errorf("api_key = %q, want env override", cfg.OpenAQ.APIKey)
	}
}

func TestLoadRequiresArtifactsDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8080\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing artifacts dir")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
