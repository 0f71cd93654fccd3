// Package migrations contains all database migration files.
// Each migration file uses init() to call migration.Register(); the package
// is blank-imported by the CLI and the server so every migration is
// registered before the runner starts.
package migrations
