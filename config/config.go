package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	coremetrics "aqcast/core/metrics"
	"aqcast/infra/meteostat"
	"aqcast/infra/mqtt"
	"aqcast/infra/openaq"
	"aqcast/infra/openmeteo"
	"aqcast/infra/store"
)

type Config struct {
	Server    ServerConfig       `json:"server"`
	Artifacts ArtifactsConfig    `json:"artifacts"`
	OpenAQ    openaq.Config      `json:"openaq"`
	Meteostat meteostat.Config   `json:"meteostat"`
	OpenMeteo openmeteo.Config   `json:"openmeteo"`
	Metrics   coremetrics.Config `json:"metrics"`
	Store     store.Config       `json:"store"`
	MQTT      mqtt.Config        `json:"mqtt"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("AQ_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "aq_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Server.SetDefaults()
	cfg.OpenAQ.SetDefaults()
	cfg.Meteostat.SetDefaults()
	cfg.OpenMeteo.SetDefaults()
	cfg.Store.SetDefaults()
	cfg.MQTT.SetDefaults()
	if err := cfg.Artifacts.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
