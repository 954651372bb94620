package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"qrentry/internal/config"
	"qrentry/internal/infrastructure/database"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var direction, dsn string

	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.StringVar(&direction, "direction", "up", "migration direction: up or down")
	flagSet.StringVar(&dsn, "database-url", "", "PostgreSQL URL (default: DATABASE_URL from the environment)")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dsn = cfg.DatabaseURL
	}
	return database.RunMigrations(dsn, direction)
}
