package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()
	require.Equal(t, "http://127.0.0.1:8080", cfg.APIBaseURL)
	require.Equal(t, "clipfeed.db", cfg.DatabaseFile)
	require.Equal(t, "+91", cfg.DefaultCountryPrefix)
}

func TestParseJsonOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_base_url":"https://api.example","default_country_prefix":"+1"}`), 0o600))

	oldArgs := os.Args
	os.Args = []string{"client", "-c", path}
	t.Cleanup(func() { os.Args = oldArgs })

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	require.Equal(t, "https://api.example", cfg.APIBaseURL)
	require.Equal(t, "+1", cfg.DefaultCountryPrefix)
	// untouched field keeps its default
	require.Equal(t, "clipfeed.db", cfg.DatabaseFile)
}

func TestParseFlagsOverride(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"client", "-a", "https://flagged.example", "-d", "other.db"}
	t.Cleanup(func() { os.Args = oldArgs })

	var cfg Config
	cfg.LoadDefaults()
	parseFlags(&cfg)

	require.Equal(t, "https://flagged.example", cfg.APIBaseURL)
	require.Equal(t, "other.db", cfg.DatabaseFile)
}
