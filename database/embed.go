package database

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrations returns the embedded migrations rooted at the migrations
// directory, ready to pass to New.
func Migrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		// the directory is embedded at build time, so this cannot fail
		panic(err)
	}
	return sub
}
