package config

// ServerConfig defines the HTTP listener settings.
type ServerConfig struct {
	Host                string   `json:"host"`
	Port                int      `json:"port"`
	ReadTimeoutSeconds  int      `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `json:"write_timeout_seconds"`
	IdleTimeoutSeconds  int      `json:"idle_timeout_seconds"`
	// AllowedOrigins lists the origins permitted by the CORS middleware.
	AllowedOrigins []string `json:"allowed_origins"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.ReadTimeoutSeconds <= 0 {
		c.ReadTimeoutSeconds = 15
	}
	if c.WriteTimeoutSeconds <= 0 {
		c.WriteTimeoutSeconds = 30
	}
	if c.IdleTimeoutSeconds <= 0 {
		c.IdleTimeoutSeconds = 60
	}
}
