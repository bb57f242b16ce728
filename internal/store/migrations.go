package store

import "embed"

// MigrationsFS ships the schema with the binary so startup can bring the
// database up to date without external tooling.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the directory inside MigrationsFS holding the SQL files.
const MigrationsDir = "migrations"
