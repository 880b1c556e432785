// Package assets embeds the default puzzle catalog and the SQL migrations.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed puzzles.toml sql/*.sql
var FS embed.FS

// Puzzles returns the bundled puzzle catalog (TOML).
func Puzzles() ([]byte, error) {
	return FS.ReadFile("puzzles.toml")
}

// Migrations returns the migration files rooted at sql/.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "sql")
}
