package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/keyfold/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path to the vault database file (default from Config)
//	-n int      wrong code submissions allowed before cooldown
//	-s int      session validity in minutes (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-n", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "path to the vault database file")
	fs.IntVar(&cfg.MaxCodeAttempts, "n", cfg.MaxCodeAttempts, "wrong code submissions allowed before cooldown")
	sessionTTL := fs.Int("s", int(cfg.SessionTTL.Minutes()), "session validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SessionTTL = time.Duration(*sessionTTL) * time.Minute
}
