package config

import (
	"flag"
	"os"

	"github.com/clipfeed/clipfeed/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the backend API
//	-d string   path of the local database file
//	-p string   default country prefix for bare 10-digit numbers
//
// Args are filtered via flagx.FilterArgs so flags owned by other components
// do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.DatabaseFile, "d", cfg.DatabaseFile, "path of the local database file")
	fs.StringVar(&cfg.DefaultCountryPrefix, "p", cfg.DefaultCountryPrefix, "default country prefix")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
