// Package config handles configuration for the client: defaults, JSON
// overlay, and command-line flags, in that order of precedence.
package config

// Config holds runtime settings for the ClipFeed client.
//
// Fields:
//   - APIBaseURL: base URL of the backend HTTP API.
//   - DatabaseFile: path of the local sqlite database.
//   - DefaultCountryPrefix: prefix assumed for bare 10-digit phone numbers.
//     A product policy, deliberately configurable.
type Config struct {
	APIBaseURL           string
	DatabaseFile         string
	DefaultCountryPrefix string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.DatabaseFile = "clipfeed.db"
	c.DefaultCountryPrefix = "+91"
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
