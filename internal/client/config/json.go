package config

import (
	"encoding/json"
	"os"

	"github.com/evolveua/queuevault/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Fields absent
// from the file decode to "" and leave the existing Config value untouched.
type JsonConfig struct {
	RelayURL     string `json:"relay_url"`
	RelayRoute   string `json:"relay_route"`
	AppSecret    string `json:"app_secret"`
	DatabasePath string `json:"database_path"`
	EventsFile   string `json:"events_file"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Panics on read or unmarshal errors (caller should recover if desired).
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.RelayURL != "" {
		cfg.RelayURL = jc.RelayURL
	}
	if jc.RelayRoute != "" {
		cfg.RelayRoute = jc.RelayRoute
	}
	if jc.AppSecret != "" {
		cfg.AppSecret = jc.AppSecret
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.EventsFile != "" {
		cfg.EventsFile = jc.EventsFile
	}
}
