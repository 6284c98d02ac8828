// Package db ships the schema migrations inside the binary.
package db

import "embed"

// Migrations holds the golang-migrate files under "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsRoot = "migrations"
