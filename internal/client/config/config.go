package config

import "os"

// Config holds runtime settings for the QueueVault CLI.
//
// Fields:
//   - RelayURL: base URL of the signing relay (scheme://host:port).
//   - RelayRoute: relay route the signed payloads are POSTed to.
//   - AppSecret: shared HMAC secret; must match the relay's APP_SECRET.
//   - DatabasePath: SQLite file holding the local key-value store.
//   - EventsFile: optional JSON file seeding the event catalog.
type Config struct {
	RelayURL     string
	RelayRoute   string
	AppSecret    string
	DatabasePath string
	EventsFile   string
}

// LoadDefaults populates c with sensible defaults. The secret has no
// default; it is read from the APP_SECRET environment variable here and may
// be overridden by JSON or flags.
func (c *Config) LoadDefaults() {
	c.RelayURL = "http://127.0.0.1:8787"
	c.RelayRoute = "/api/github"
	c.AppSecret = os.Getenv("APP_SECRET")
	c.DatabasePath = "queuevault.db"
	c.EventsFile = "events.json"
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
