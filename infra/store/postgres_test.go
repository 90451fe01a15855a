package store

import "testing"

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.Host != "localhost" {
		t.Errorf("host = %q", cfg.Host)
	}
	if cfg.Port != 5432 {
		t.Errorf("port = %d", cfg.Port)
	}
	if cfg.SSLMode != "disable" {
		t.Errorf("ssl_mode = %q", cfg.SSLMode)
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5433, User: "aq", Password: "pw", Database: "aqcast", SSLMode: "require"}
	want := "host=db port=5433 user=aq password=pw dbname=aqcast sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}
