package config

import (
	"flag"
	"os"

	"github.com/evolveua/queuevault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-r string   base URL of the signing relay (default from Config)
//	-s string   shared HMAC secret (default from APP_SECRET env)
//	-d string   path to the local SQLite database file
//	-e string   path to the events catalog JSON file
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-r", "-s", "-d", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.RelayURL, "r", cfg.RelayURL, "base URL of the signing relay")
	fs.StringVar(&cfg.AppSecret, "s", cfg.AppSecret, "shared HMAC secret")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database file")
	fs.StringVar(&cfg.EventsFile, "e", cfg.EventsFile, "path to the events catalog file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
