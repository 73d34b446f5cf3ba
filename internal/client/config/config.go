package config

import "time"

// Config holds runtime settings for the files manager CLI.
//
// Fields:
//   - ServerAddr: base URL (or host:port) of the HTTP API.
//   - OnlineCheckInterval: how often the client probes /health.
//   - RequestTimeout: upper bound for a single API call.
//   - DownloadDir: directory, relative to the working directory, where
//     downloaded content is saved.
type Config struct {
	ServerAddr          string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	DownloadDir         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "http://127.0.0.1:5000"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.DownloadDir = "downloads"
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
