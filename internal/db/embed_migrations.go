package db

import "embed"

// MigrationFS embeds the console_storage schema. Applied by cmd/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
