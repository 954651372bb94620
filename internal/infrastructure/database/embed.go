package database

import "embed"

// MigrationFS embeds the SQL migrations applied by RunMigrations and cmd/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
