package db

import "embed"

// Migrations ship inside the binary so a deployment is a single file.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS
