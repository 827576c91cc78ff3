package config

import "time"

// Config holds runtime settings for the credline client.
type Config struct {
	// ServerURL is the base URL of the backend HTTP API.
	ServerURL string

	// DatabasePath is the local SQLite database file.
	DatabasePath string

	// OnlineCheckInterval is how often the client probes server reachability.
	OnlineCheckInterval time.Duration

	// SyncWakeInterval is how often the sync worker re-checks the queue even
	// without a connectivity edge or a new insert.
	SyncWakeInterval time.Duration

	// RequestTimeout bounds every HTTP call to the backend.
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "credline.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncWakeInterval = 30 * time.Second
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
