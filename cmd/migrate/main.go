// migrate applies or rolls back the console_storage schema used by TOKEN_STORE_DRIVER=postgres.
package main

import (
	"flag"
	"fmt"
	"os"

	"event-admin-console/internal/config"
	"event-admin-console/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", migrate.Up, "Migration direction: up or down")
	showVersion := flag.Bool("version", false, "Print the applied schema version and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; set it in .env or the environment")
		os.Exit(1)
	}

	if *showVersion {
		v, dirty, err := migrate.Version(cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
		fmt.Printf("version %d (dirty=%t)\n", v, dirty)
		return
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
