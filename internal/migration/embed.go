// Package migration applies the embedded schema files in lexical order.
package migration

import "embed"

const migrationsDir = "migrations"

// Only forward migrations ship with the binary.
//
//go:embed migrations/*.up.sql
var embeddedMigrations embed.FS
