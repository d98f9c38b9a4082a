package config

import (
	"encoding/json"
	"os"

	"github.com/clipfeed/clipfeed/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	APIBaseURL           string `json:"api_base_url"`
	DatabaseFile         string `json:"database_file"`
	DefaultCountryPrefix string `json:"default_country_prefix"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// the -c/-config flags. Missing flag means no JSON is loaded. Empty JSON
// fields leave the current value untouched.
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

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.DatabaseFile != "" {
		cfg.DatabaseFile = jc.DatabaseFile
	}
	if jc.DefaultCountryPrefix != "" {
		cfg.DefaultCountryPrefix = jc.DefaultCountryPrefix
	}
}
